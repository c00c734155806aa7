package bootstrap

import "github.com/kbukum/whisperd/config"

// Config is satisfied by any struct embedding config.ServiceConfig that also
// has ApplyDefaults and Validate. NewApp calls both before anything starts.
type Config interface {
	Base() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
