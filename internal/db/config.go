package db

import "fmt"

// SQLite connection defaults
const (
	defaultBusyTimeoutMS = 5000
)

// Config describes the two database files backing one logical database:
// the persistent file and the transient file attached under the
// "transient" schema name.
//
// An empty TransientPath uses a scratch file that is removed when the
// database closes, which is the normal configuration: transient state is
// meant to be lost on restart. A plain in-memory database would not work
// here, because ATTACH ':memory:' gives every pooled connection a private
// copy.
type Config struct {
	Path          string `mapstructure:"path" yaml:"path"`
	TransientPath string `mapstructure:"transient_path" yaml:"transient_path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

func (c *Config) dsn() string {
	timeout := c.BusyTimeoutMS
	if timeout <= 0 {
		timeout = defaultBusyTimeoutMS
	}
	return fmt.Sprintf("file:%s?_busy_timeout=%d&_fk=1", c.Path, timeout)
}
