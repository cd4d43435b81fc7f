package main

import (
	"regexp"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var negativeNumber = regexp.MustCompile(`^-[0-9]+$`)

// separatePositionals lets values such as "-5" reach argument validation
// instead of being parsed as shorthand flags. When a negative number is
// present, the subcommand name and known flags (with their values) are moved
// ahead of a "--" terminator and the remaining tokens follow in their
// original order. Input that already contains "--" is left alone.
func separatePositionals(root *cobra.Command, args []string) []string {
	if !slices.ContainsFunc(args, negativeNumber.MatchString) || slices.Contains(args, "--") {
		return args
	}

	cmd := root
	var command, flags, positionals []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "-" || !strings.HasPrefix(arg, "-") || negativeNumber.MatchString(arg) {
			if cmd == root && len(positionals) == 0 {
				if sub := subcommandNamed(root, arg); sub != nil {
					cmd = sub
					command = append(command, arg)
					continue
				}
			}
			positionals = append(positionals, arg)
			continue
		}
		flags = append(flags, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if flag := lookupFlag(root, cmd, arg); flag != nil && flag.NoOptDefVal == "" && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}

	out := make([]string, 0, len(args)+1)
	out = append(out, command...)
	out = append(out, flags...)
	out = append(out, "--")
	return append(out, positionals...)
}

func subcommandNamed(root *cobra.Command, name string) *cobra.Command {
	for _, sub := range root.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return sub
		}
	}
	return nil
}

func lookupFlag(root, cmd *cobra.Command, arg string) *pflag.Flag {
	for _, set := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags(), root.PersistentFlags()} {
		if name, ok := strings.CutPrefix(arg, "--"); ok {
			if flag := set.Lookup(name); flag != nil {
				return flag
			}
			continue
		}
		if len(arg) == 2 {
			if flag := set.ShorthandLookup(arg[1:]); flag != nil {
				return flag
			}
		}
	}
	return nil
}
