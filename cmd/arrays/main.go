package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"ProductCRUD/pkg/arrays"
)

const usage = `usage:
  arrays unique 1 2 3 4 2 3 5
  arrays common 1,2,3,88,90 88,90`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "unique":
		xs, err := parseInts(args[1:])
		if err != nil {
			return err
		}
		fmt.Println(format(arrays.Unique(xs)))
	case "common":
		if len(args) != 3 {
			return fmt.Errorf("common takes exactly two comma-separated lists")
		}
		a, err := parseInts(strings.Split(args[1], ","))
		if err != nil {
			return err
		}
		b, err := parseInts(strings.Split(args[2], ","))
		if err != nil {
			return err
		}
		fmt.Println(format(arrays.Common(a, b)))
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
	return nil
}

func parseInts(fields []string) ([]int, error) {
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("not an integer: %q", f)
		}
		out = append(out, n)
	}
	return out, nil
}

func format(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
