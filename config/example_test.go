package config_test

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ardnew/blockcfg/config"
)

func ExampleParser_Parse() {
	const input = `
# service settings
root := /srv/app

block server
  host = localhost
  port = 8080   # default port
endblock

data = $LOCAL{root}/data
url  = http://$CONFIG{server:host}:$CONFIG{server:port}/
`

	p := config.NewParser()
	if err := p.Parse(context.Background(), "app.cfg", strings.NewReader(input)); err != nil {
		fmt.Println(err)

		return
	}

	for key, value := range p.Block().All() {
		fmt.Printf("%s = %s\n", key, value)
	}
	// Output:
	// data = /srv/app/data
	// server:host = localhost
	// server:port = 8080
	// url = http://localhost:8080/
}

func ExampleParseError() {
	const input = "block server\nport 8080\n"

	p := config.NewParser()
	err := p.Parse(context.Background(), "/etc/app.cfg", strings.NewReader(input))

	for _, d := range p.Diagnostics() {
		fmt.Printf("%s line %d: %s\n", d.Kind, d.Line, d.Message)
	}

	fmt.Println(err != nil)
	// Output:
	// syntax line 2: invalid syntax
	// unclosed block line 1: unclosed block server
	// true
}

func ExampleBlock_Format() {
	b := config.NewBlock("")
	_ = b.Set("log:level", "debug")
	_ = b.Set("log:format", "text")
	b.SetDescription("log:level", "minimum level written")

	_ = b.Format(os.Stdout, true)
	// Output:
	// block log
	//   format = text
	//   # minimum level written
	//   level = debug
	// endblock
}
