package cli

import (
	"fmt"

	"github.com/spf13/pflag"
)

// pairFlag is a flag taking two values on the command line: the flag's own
// argument (a location) and the positional argument that follows it (the
// content). pflag only binds the first; Set records how many positionals had
// been collected at that point so the content can be picked out after parsing.
type pairFlag struct {
	fs       *pflag.FlagSet
	location string
	argIndex int
	set      bool
}

func newPairFlag(fs *pflag.FlagSet) *pairFlag {
	return &pairFlag{fs: fs}
}

func (p *pairFlag) String() string { return p.location }

func (p *pairFlag) Type() string { return "path" }

func (p *pairFlag) Set(v string) error {
	if p.set {
		return fmt.Errorf("may only be given once")
	}
	p.location = v
	p.argIndex = len(p.fs.Args())
	p.set = true
	return nil
}

// content returns the positional argument bound to this flag.
func (p *pairFlag) content(name string, args []string) (string, error) {
	if p.argIndex >= len(args) {
		return "", fmt.Errorf("--%s requires <path> <content>", name)
	}
	return args[p.argIndex], nil
}
