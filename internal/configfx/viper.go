package configfx

import (
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "dbxbackuper"
	ConfigName = "dbxbackuper"

	flagConfig = "config"
)

var defaultConfigPaths = []string{
	".",
	"./config",
	path.Join("/etc", ConfigName),
}

// ViperProvider layers explicitly set flags over env over the config file over
// defaults.
func ViperProvider(logger *logrus.Logger, flagSet *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()

	setDefaults(v)

	if err := bindChangedFlags(v, flagSet); err != nil {
		return nil, errors.Wrap(err, "unable to bind flags")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfig(v, logger); err != nil {
		return nil, err
	}

	return v, nil
}

// bindChangedFlags binds only flags given on the command line; a bound flag's
// zero default would otherwise shadow the config file.
func bindChangedFlags(v *viper.Viper, flagSet *pflag.FlagSet) error {
	var err error

	flagSet.VisitAll(func(f *pflag.Flag) {
		if err != nil || !(f.Changed || f.Name == flagConfig) {
			return
		}

		err = v.BindPFlag(f.Name, f)
	})

	return err
}

func readConfig(v *viper.Viper, logger *logrus.Logger) error {
	if file := v.GetString(flagConfig); file != "" {
		v.SetConfigFile(file)

		// explicit file must exist
		return errors.Wrapf(v.ReadInConfig(), "unable to read config '%s'", file)
	}

	v.SetConfigName(ConfigName)
	for _, dir := range defaultConfigPaths {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		logger.WithError(err).Warn("Couldn't read config file, using defaults and environment")
		return nil
	}

	logger.WithField("file", v.ConfigFileUsed()).Debug("Config file loaded")

	return nil
}
