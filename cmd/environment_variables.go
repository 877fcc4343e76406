package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

const (
	EnvironmentVariablePrefix = "SCRD_"
	fileSuffix                = "_FILE"
)

// SetFlagsFromEnvVariables sets each flag from an env variable whose name
// starts with `SCRD_`, e.g. --database is set from SCRD_DATABASE. Secrets are
// better kept out of the environment, so a flag can instead be read from the
// file named by SCRD_<FLAG>_FILE.
func SetFlagsFromEnvVariables(fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		name := flagToEnvVarName(f)
		if val, ok := os.LookupEnv(name); ok {
			err = fs.Set(f.Name, val)
			return
		}
		if strings.HasSuffix(name, fileSuffix) {
			// avoid SCRD_FOO_FILE_FILE
			return
		}
		path, ok := os.LookupEnv(name + fileSuffix)
		if !ok {
			return
		}
		contents, readErr := os.ReadFile(path)
		if readErr != nil {
			err = fmt.Errorf("reading %s: %w", name+fileSuffix, readErr)
			return
		}
		err = fs.Set(f.Name, string(contents))
	})
	return err
}

func flagToEnvVarName(f *pflag.Flag) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_").Replace(f.Name))
	return EnvironmentVariablePrefix + name
}
