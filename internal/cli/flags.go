package cli

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// levelFlag is a --log-level value checked against logrus levels at parse time.
type levelFlag string

var _ pflag.Value = (*levelFlag)(nil)

func (l *levelFlag) String() string { return string(*l) }

func (l *levelFlag) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if _, err := logrus.ParseLevel(s); err != nil {
		return err
	}
	*l = levelFlag(s)
	return nil
}

func (l *levelFlag) Type() string { return "level" }
