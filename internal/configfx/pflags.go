package configfx

import (
	"os"

	"github.com/spf13/pflag"
)

// PFlags returns the persistent flags. Names equal viper keys.
func PFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)

	fs.StringP(flagConfig, "c", "", "Config file")

	fs.String(ConfigSourceDirectory, "", "Directory with database files to back up")
	fs.String(ConfigBackupDirectory, "", "Backup root holding staged copies and archives")
	fs.String(ConfigArchiveFormat, "", "Preferred archive format: zip or 7z")
	fs.String(ConfigProducerKind, "", "Producer control: none, process or docker")
	fs.String(ConfigLogLevel, "", "Log level")

	return fs
}
