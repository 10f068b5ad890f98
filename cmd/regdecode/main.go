package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/embedded-tools/regdecode/decode"
	"github.com/embedded-tools/regdecode/defs"
	"github.com/embedded-tools/regdecode/device"
	"github.com/embedded-tools/regdecode/render"
	"github.com/embedded-tools/regdecode/script"
	"github.com/embedded-tools/regdecode/walk"
)

func main() {
	devType := flag.String("type", "", "Device type: emu, i2c, mem")
	definitionsPath := flag.String("definitions", "", "Path to the definitions stream file")
	busDevice := flag.String("bus-device", "", "Bus device path (e.g. /dev/i2c-2 or /dev/mem)")
	busAddr := flag.String("bus-addr", "0", "I2C slave address")
	addrWidth := flag.Int("addr-width", 8, "I2C register address width in bits: 8, 16, or 32")
	endian := flag.String("endian", "little", "I2C address/data byte order: little or big")
	value := flag.String("value", "0", "Literal register value for -type emu")
	startAddr := flag.String("start", "0", "First address to decode (inclusive)")
	endAddr := flag.String("end", "", "Last address to decode (inclusive, default: highest defined)")
	scriptPath := flag.String("script", "", "Optional Lua script post-processing decoded field values")
	noColor := flag.Bool("no-color", false, "Disable ANSI color output even on a terminal")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: regdecode -type <type> -definitions <file> [options]\n\n")
		fmt.Fprintf(os.Stderr, "Decodes hardware registers against a binary definitions stream.\n\n")
		fmt.Fprintf(os.Stderr, "Required options:\n")
		fmt.Fprintf(os.Stderr, "    - i2c: -bus-device (e.g. /dev/i2c-2), -bus-addr, -addr-width\n")
		fmt.Fprintf(os.Stderr, "    - mem: -bus-device (e.g. /dev/mem)\n")
		fmt.Fprintf(os.Stderr, "    - emu: -value\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := run(*devType, *definitionsPath, *busDevice, *busAddr, *addrWidth, *endian, *value, *startAddr, *endAddr, *scriptPath, *noColor); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(devType, definitionsPath, busDevice, busAddr string, addrWidth int, endian, value, startAddr, endAddr, scriptPath string, noColor bool) error {
	if definitionsPath == "" {
		flag.Usage()
		return fmt.Errorf("missing -definitions")
	}

	buf, err := os.ReadFile(definitionsPath)
	if err != nil {
		return fmt.Errorf("read definitions: %w", err)
	}

	definitions, rest, err := defs.Parse(buf)
	if err != nil {
		return fmt.Errorf("decode definitions stream: %w", err)
	}
	if len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d excess byte(s) in %s\n", len(rest), definitionsPath)
	}
	defer definitions.Release()

	reader, err := openDevice(devType, busDevice, busAddr, addrWidth, endian, value)
	if err != nil {
		return err
	}
	defer reader.Close()

	start, err := parseUint(startAddr)
	if err != nil {
		return fmt.Errorf("-start: %w", err)
	}
	end, err := highestAddr(definitions, endAddr)
	if err != nil {
		return err
	}

	out := render.New(os.Stdout)
	if noColor {
		out = render.NewWithColor(os.Stdout, false)
	}
	defer out.Flush()

	var sink decode.Sink = out
	if scriptPath != "" {
		src, err := os.ReadFile(scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		hook, err := script.New(out, string(src))
		if err != nil {
			return fmt.Errorf("load script: %w", err)
		}
		defer hook.Close()
		sink = hook
	}

	ctx := context.Background()
	rc := walk.Walk(definitions.Units, start, end, func(reg *defs.Register) int {
		raw, err := reader.Read(ctx, reg.Offset+reg.Unit.Start, reg.Width)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: read %s: %v\n", reg.Name, err)
			return -1
		}
		decode.DecodeRegister(reg, raw, sink)
		return 0
	})
	if rc != 0 {
		return fmt.Errorf("walk stopped early (rc=%d)", rc)
	}

	return nil
}

func openDevice(devType, busDevice, busAddrStr string, addrWidth int, endian, valueStr string) (device.Reader, error) {
	switch devType {
	case "emu":
		v, err := parseUint(valueStr)
		if err != nil {
			return nil, fmt.Errorf("-value: %w", err)
		}
		return device.EmuReader{Value: v}, nil

	case "i2c":
		if busDevice == "" {
			return nil, fmt.Errorf("missing -bus-device")
		}
		addr, err := parseUint(busAddrStr)
		if err != nil {
			return nil, fmt.Errorf("-bus-addr: %w", err)
		}
		bigEndian, err := parseEndian(endian)
		if err != nil {
			return nil, err
		}
		return device.OpenI2C(busDevice, uint16(addr), addrWidth, bigEndian)

	case "mem":
		return device.OpenMem()

	case "":
		return nil, fmt.Errorf("missing -type")

	default:
		return nil, fmt.Errorf("unsupported device type %q", devType)
	}
}

func highestAddr(d *defs.Definitions, endAddr string) (uint64, error) {
	if endAddr != "" {
		return parseUint(endAddr)
	}
	var max uint64
	for _, u := range d.Units {
		if u.End > max {
			max = u.End
		}
	}
	return max, nil
}

func parseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	return strconv.ParseUint(s, 0, 64)
}

func parseEndian(s string) (bool, error) {
	switch s {
	case "little":
		return false, nil
	case "big":
		return true, nil
	default:
		return false, fmt.Errorf("-endian must be little or big, got %q", s)
	}
}
