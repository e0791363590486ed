// scmipinctl - command-line client for the scmi-pinctrl daemon
//
// It talks to the daemon's HTTP API and renders pin state for operators:
//
//	scmipinctl pins                       list pin ranges and claimed pins
//	scmipinctl pin 42                     show one pin's mux, direction, config
//	scmipinctl mux 42 3                   route pin 42 to function 3
//	scmipinctl config 42 bias-pull-up     apply a named property
//	scmipinctl config 42 slew-rate 2      apply a property with a value
//	scmipinctl claim 42                   borrow pin 42 as a GPIO
//	scmipinctl release 42                 restore pin 42
//	scmipinctl states                     list loaded pin states
//	scmipinctl apply uart2-default        apply a pin state by name
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
)

const defaultAddr = "http://127.0.0.1:8090"

func main() {
	addr := flag.String("addr", defaultAddr, "daemon API address")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	c := &client{
		base: *addr + "/api/v1",
		http: &http.Client{Timeout: 10 * time.Second},
	}

	var err error
	switch args[0] {
	case "pins":
		err = c.listPins()
	case "pin":
		err = withPinArg(args, func(pin uint64) error { return c.showPin(pin) })
	case "mux":
		if len(args) < 3 {
			usage()
			os.Exit(1)
		}
		err = c.setMux(args[1], args[2])
	case "config":
		if len(args) < 3 {
			usage()
			os.Exit(1)
		}
		value := ""
		if len(args) > 3 {
			value = args[3]
		}
		err = c.setConfig(args[1], args[2], value)
	case "claim":
		err = withPinArg(args, func(pin uint64) error { return c.claim(pin, true) })
	case "release":
		err = withPinArg(args, func(pin uint64) error { return c.claim(pin, false) })
	case "states":
		err = c.listStates()
	case "apply":
		if len(args) < 2 {
			usage()
			os.Exit(1)
		}
		err = c.applyState(args[1])
	default:
		usage()
		os.Exit(1)
	}

	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: scmipinctl [-addr URL] <command> [args]")
	fmt.Fprintln(os.Stderr, "Commands: pins | pin <n> | mux <n> <func> | config <n> <property> [value] |")
	fmt.Fprintln(os.Stderr, "          claim <n> | release <n> | states | apply <name>")
}

// withPinArg parses a pin-number argument and runs fn with it.
func withPinArg(args []string, fn func(pin uint64) error) error {
	if len(args) < 2 {
		usage()
		os.Exit(1)
	}
	pin, err := strconv.ParseUint(args[1], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid pin number %q", args[1])
	}
	return fn(pin)
}

// client is a thin wrapper over the daemon's HTTP API.
type client struct {
	base string
	http *http.Client
}

// apiError mirrors the daemon's structured error responses.
type apiError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// call issues one request and decodes the JSON response into out.
func (c *client) call(method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.base+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("daemon unreachable: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("%s (%s)", apiErr.Message, apiErr.Code)
		}
		return fmt.Errorf("daemon returned %s", resp.Status)
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

type pinRange struct {
	Begin   uint16 `json:"begin"`
	NumPins uint16 `json:"num_pins"`
}

type pinList struct {
	Ranges     []pinRange `json:"ranges"`
	NumPins    int        `json:"num_pins"`
	Claimed    []uint16   `json:"claimed"`
	Properties []string   `json:"properties"`
}

func (c *client) listPins() error {
	var resp pinList
	if err := c.call(http.MethodGet, "/pins/", nil, &resp); err != nil {
		return err
	}

	rows := pterm.TableData{{"Begin", "End", "Pins"}}
	for _, rng := range resp.Ranges {
		end := int(rng.Begin) + int(rng.NumPins) - 1
		rows = append(rows, []string{
			strconv.Itoa(int(rng.Begin)),
			strconv.Itoa(end),
			strconv.Itoa(int(rng.NumPins)),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return err
	}

	pterm.Info.Printf("%d pins total\n", resp.NumPins)
	if len(resp.Claimed) > 0 {
		pterm.Info.Printf("claimed as GPIO: %v\n", resp.Claimed)
	}
	return nil
}

type configEntry struct {
	Param uint8  `json:"param"`
	Arg   uint32 `json:"arg"`
}

type pinDetail struct {
	Pin       uint32        `json:"pin"`
	Function  uint16        `json:"function"`
	Direction string        `json:"direction"`
	Config    []configEntry `json:"config"`
}

func (c *client) showPin(pin uint64) error {
	var resp pinDetail
	if err := c.call(http.MethodGet, fmt.Sprintf("/pins/%d", pin), nil, &resp); err != nil {
		return err
	}

	pterm.Info.Printf("pin %d: function=%d direction=%s\n", resp.Pin, resp.Function, resp.Direction)

	if len(resp.Config) == 0 {
		pterm.Info.Println("no configuration parameters set")
		return nil
	}

	rows := pterm.TableData{{"Param", "Arg"}}
	for _, entry := range resp.Config {
		rows = append(rows, []string{
			strconv.Itoa(int(entry.Param)),
			strconv.FormatUint(uint64(entry.Arg), 10),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func (c *client) setMux(pinArg, funcArg string) error {
	pin, err := strconv.ParseUint(pinArg, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid pin number %q", pinArg)
	}
	function, err := strconv.ParseUint(funcArg, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid function %q", funcArg)
	}

	body := map[string]uint64{"function": function}
	if err := c.call(http.MethodPut, fmt.Sprintf("/pins/%d/mux", pin), body, nil); err != nil {
		return err
	}
	pterm.Success.Printf("pin %d routed to function %d\n", pin, function)
	return nil
}

func (c *client) setConfig(pinArg, property, valueArg string) error {
	pin, err := strconv.ParseUint(pinArg, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid pin number %q", pinArg)
	}

	body := map[string]any{"property": property}
	if valueArg != "" {
		value, err := strconv.ParseUint(valueArg, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid value %q", valueArg)
		}
		body["value"] = value
	}

	if err := c.call(http.MethodPut, fmt.Sprintf("/pins/%d/config", pin), body, nil); err != nil {
		return err
	}
	pterm.Success.Printf("pin %d: %s applied\n", pin, property)
	return nil
}

func (c *client) claim(pin uint64, claim bool) error {
	action := "release"
	if claim {
		action = "claim"
	}
	if err := c.call(http.MethodPost, fmt.Sprintf("/pins/%d/%s", pin, action), nil, nil); err != nil {
		return err
	}
	if claim {
		pterm.Success.Printf("pin %d claimed as GPIO\n", pin)
	} else {
		pterm.Success.Printf("pin %d released\n", pin)
	}
	return nil
}

func (c *client) listStates() error {
	var resp struct {
		States []string `json:"states"`
	}
	if err := c.call(http.MethodGet, "/states/", nil, &resp); err != nil {
		return err
	}

	if len(resp.States) == 0 {
		pterm.Info.Println("no pin states loaded")
		return nil
	}
	for _, name := range resp.States {
		fmt.Println(name)
	}
	return nil
}

func (c *client) applyState(name string) error {
	if err := c.call(http.MethodPost, "/states/"+name+"/apply", nil, nil); err != nil {
		return err
	}
	pterm.Success.Printf("state %q applied\n", name)
	return nil
}
