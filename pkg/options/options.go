package options

import "strings"

// ParsedOptions holds the split form of a raw argument list. Flags keep their
// original order so unrecognized ones can be forwarded verbatim to the backend
// tool. The struct is built once per invocation and not mutated afterwards.
type ParsedOptions struct {
	Flags       []string
	Positionals []string
}

// Parse splits raw tokens into flags and positional arguments.
//
// A token of the form "-xyz" expands to the flags "x", "y", "z" in order.
// A token of the form "--name" yields the single flag "name".
// Everything else, including "-" and "--", is positional. Flag legality is
// not checked here; unknown flags are pass-through options for the backend.
func Parse(args []string) *ParsedOptions {
	opts := &ParsedOptions{}

	for _, arg := range args {
		switch {
		case strings.HasPrefix(arg, "--"):
			if name := strings.TrimPrefix(arg, "--"); name != "" {
				opts.Flags = append(opts.Flags, name)
			} else {
				opts.Positionals = append(opts.Positionals, arg)
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			for _, c := range arg[1:] {
				opts.Flags = append(opts.Flags, string(c))
			}
		default:
			opts.Positionals = append(opts.Positionals, arg)
		}
	}

	return opts
}

// ExtractPython pulls a "-p <python>" pair out of the raw argument list
// before generic parsing. The value is forwarded to the backend as a
// "--python=<value>" option. Returns the value (empty if absent) and the
// remaining tokens.
func ExtractPython(args []string) (string, []string) {
	for i, arg := range args {
		if arg == "-p" && i+1 < len(args) {
			rest := make([]string, 0, len(args)-2)
			rest = append(rest, args[:i]...)
			rest = append(rest, args[i+2:]...)
			return args[i+1], rest
		}
	}
	return "", args
}

// Args re-materializes the flags as command-line arguments: single-character
// names get a single dash, longer names a double dash. Used to forward
// pass-through options to the backend tool in their original order.
func (o *ParsedOptions) Args() []string {
	out := make([]string, 0, len(o.Flags))
	for _, flag := range o.Flags {
		if len(flag) == 1 {
			out = append(out, "-"+flag)
		} else {
			out = append(out, "--"+flag)
		}
	}
	return out
}

// Has reports whether any of the given flag names is present
func (o *ParsedOptions) Has(names ...string) bool {
	for _, flag := range o.Flags {
		for _, name := range names {
			if flag == name {
				return true
			}
		}
	}
	return false
}

// Remove returns a copy with every occurrence of the given flag names dropped,
// preserving the order of the remaining flags
func (o *ParsedOptions) Remove(names ...string) *ParsedOptions {
	out := &ParsedOptions{Positionals: o.Positionals}
	for _, flag := range o.Flags {
		drop := false
		for _, name := range names {
			if flag == name {
				drop = true
				break
			}
		}
		if !drop {
			out.Flags = append(out.Flags, flag)
		}
	}
	return out
}
