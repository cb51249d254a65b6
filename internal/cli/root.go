// Package cli implements the docstore command line.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Ratio1/docstore_sdk_go/internal/config"
	"github.com/Ratio1/docstore_sdk_go/internal/httpx"
	"github.com/Ratio1/docstore_sdk_go/internal/jq"
	"github.com/Ratio1/docstore_sdk_go/internal/logging"
	"github.com/Ratio1/docstore_sdk_go/pkg/docstore"
)

type rootFlags struct {
	get       string
	appendTo  *pairFlag
	update    *pairFlag
	set       *pairFlag
	del       string
	token     string
	baseURL   string
	mode      string
	config    string
	jq        string
	logLevel  string
	logFormat string
}

// NewRootCommand creates the docstore command. Output is written to the
// command's configured stdout; configuration and seed files are read from fs.
func NewRootCommand(fs afero.Fs) *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   "docstore",
		Short: "Read and write a remote JSON document store",
		Long: `docstore reads and writes nodes of a hierarchical JSON document store
(Firebase Realtime Database REST shape). Locations are slash-delimited paths
such as /users/42.

Actions run in a fixed order regardless of their position on the command
line: --token, --get, --append, --update, --set, --delete.

Content that starts with a dash (a negative number) must follow "--", which
ends flag parsing: docstore --update /score -- -5`,
		Example: `  docstore --get /test
  docstore --token $TOKEN --append /feedback '{"score":5}'
  docstore --update /users/42 '{"name":"ada"}' --get /users/42
  docstore --get /feedback --jq '[.[].score] | add'`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthHint(run(cmd, fs, f, args))
		},
	}

	flags := cmd.Flags()
	f.appendTo = newPairFlag(flags)
	f.update = newPairFlag(flags)
	f.set = newPairFlag(flags)

	flags.StringVar(&f.get, "get", "", "print the value at the given location")
	flags.Var(f.appendTo, "append", "append <content> under `path` with a generated key")
	flags.Var(f.update, "update", "merge <content> into the node at `path`")
	flags.Var(f.set, "set", "overwrite the node at `path` with <content>")
	flags.StringVar(&f.del, "delete", "", "delete the node at the given location")
	flags.StringVar(&f.token, "token", "", "auth token attached to every request")
	flags.StringVar(&f.baseURL, "url", "", "base URL of the store (default "+config.DefaultBaseURL+")")
	flags.StringVar(&f.mode, "mode", "", "runtime mode: auto, http or mock")
	flags.StringVar(&f.config, "config", "", "path to config file (default: ~/.config/docstore/config.yaml)")
	flags.StringVar(&f.jq, "jq", "", "jq expression applied to the --get result")
	flags.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&f.logFormat, "log-format", "", "log format: console or json")

	return cmd
}

type writeAction struct {
	name string
	flag *pairFlag
}

func run(cmd *cobra.Command, fs afero.Fs, f *rootFlags, args []string) error {
	writes := []writeAction{
		{"append", f.appendTo},
		{"update", f.update},
		{"set", f.set},
	}
	contents, err := bindContents(writes, args)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if len(contents) == 0 && !flags.Changed("get") && !flags.Changed("delete") {
		if flags.Changed("token") {
			return nil
		}
		return cmd.Help()
	}

	cfg, err := config.Load(fs, f.config)
	if err != nil {
		return err
	}
	if flags.Changed("url") {
		cfg.BaseURL = f.baseURL
	}
	if flags.Changed("mode") {
		cfg.Mode = f.mode
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	var filter *jq.Filter
	if f.jq != "" {
		if filter, err = jq.Compile(f.jq); err != nil {
			return err
		}
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	client, mode, err := docstore.Open(cfg.Settings(fs), docstore.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Debug("client ready", zap.String("mode", mode))

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if flags.Changed("token") {
		client.SetToken(f.token)
	}

	if flags.Changed("get") {
		data, err := client.Get(ctx, f.get)
		if err != nil {
			return err
		}
		if filter == nil {
			if err := printValue(out, data); err != nil {
				return err
			}
		} else {
			results, err := filter.Apply(ctx, data)
			if err != nil {
				return err
			}
			for _, v := range results {
				if err := printValue(out, v); err != nil {
					return err
				}
			}
		}
	}

	if content, ok := contents["append"]; ok {
		name, err := client.Append(ctx, f.appendTo.location, docstore.ParseContent(content))
		if err != nil {
			return err
		}
		logger.Info("appended", zap.String("location", f.appendTo.location), zap.String("name", name))
		fmt.Fprintln(out, "done")
	}

	if content, ok := contents["update"]; ok {
		if err := client.Update(ctx, f.update.location, docstore.ParseContent(content)); err != nil {
			return err
		}
		fmt.Fprintln(out, "done")
	}

	if content, ok := contents["set"]; ok {
		if err := client.Set(ctx, f.set.location, docstore.ParseContent(content)); err != nil {
			return err
		}
		fmt.Fprintln(out, "done")
	}

	if flags.Changed("delete") {
		if err := client.Delete(ctx, f.del); err != nil {
			return err
		}
		fmt.Fprintln(out, "done")
	}

	return nil
}

// withAuthHint points at the token when the store rejected the credentials.
func withAuthHint(err error) error {
	var httpErr *httpx.HTTPError
	if errors.As(err, &httpErr) && httpErr.Unauthorized() {
		return fmt.Errorf("%w (check --token or %s)", err, config.EnvToken)
	}
	return err
}

// bindContents pairs each given write flag with the positional argument that
// followed it and rejects leftover or shared positionals.
func bindContents(writes []writeAction, args []string) (map[string]string, error) {
	contents := make(map[string]string, len(writes))
	owner := make(map[int]string, len(writes))
	for _, w := range writes {
		if !w.flag.set {
			continue
		}
		content, err := w.flag.content(w.name, args)
		if err != nil {
			return nil, err
		}
		if prev, taken := owner[w.flag.argIndex]; taken {
			return nil, fmt.Errorf("--%s and --%s both need their own <content> argument", prev, w.name)
		}
		owner[w.flag.argIndex] = w.name
		contents[w.name] = content
	}
	for i, arg := range args {
		if _, used := owner[i]; !used {
			return nil, fmt.Errorf("unexpected argument %q", arg)
		}
	}
	return contents, nil
}

// printValue writes v as JSON indented by two spaces.
func printValue(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
