// Command applesoft is the interactive shell for the Applesoft BASIC
// core: the "]" prompt, line-numbered program entry, and immediate-mode
// execution, grounded on GaryLuck-basic-plus-1's basic.go REPL loop (liner for
// line editing, a banner, a loop until the user quits).
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/danswartzendruber/liner"
	"github.com/gorilla/mux"

	"github.com/go-applesoft/applesoft/afile"
	"github.com/go-applesoft/applesoft/interp"
	"github.com/go-applesoft/applesoft/screen"
)

var (
	serveAddr = flag.String("serve", "", "serve SAVE/LOAD over HTTP at this address (e.g. :6502) instead of the local filesystem")
	filesDir  = flag.String("dir", ".", "directory for local SAVE/LOAD files")
)

func main() {
	flag.Parse()

	scr := screen.NewANSI(os.Stdout)
	input := screen.NewLinerReader()
	defer input.Close()

	it := interp.New(scr, input, fileStore())

	cmd := liner.NewLiner()
	cmd.SetMultiLineMode(true)
	defer cmd.Close()

	fmt.Println("APPLESOFT BASIC")
	fmt.Println()

	for {
		line, err := cmd.Prompt("]")
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Printf("?ERROR: %s\n", err)
			continue
		}
		cmd.AppendHistory(line)

		switch strings.ToUpper(strings.TrimSpace(line)) {
		case "":
			continue
		case "QUIT", "EXIT":
			return
		case "DUMP":
			it.DumpState()
			continue
		}

		if err := it.ParseAndStore(line); err != nil {
			fmt.Println(err)
		}
	}
}

// fileStore wires the SAVE/LOAD capability: local by default, or a
// Remote client talking to a mux-routed server this process also
// starts when -serve is given (the spec's optional HTTP-backed afile
// sink).
func fileStore() interp.FileStore {
	if *serveAddr == "" {
		return afile.NewLocal(*filesDir)
	}

	local := afile.NewLocal(*filesDir)
	rtr := mux.NewRouter()
	afile.WrapFileRoutes(rtr, local)

	go func() {
		if err := http.ListenAndServe(*serveAddr, rtr); err != nil {
			fmt.Fprintf(os.Stderr, "file server: %s\n", err)
		}
	}()

	return afile.NewRemote("http://127.0.0.1" + *serveAddr)
}
