package db

// DbConfig is the part of the node configuration the mongo plugins read.
type DbConfig interface {
	DbURI() string
	DbName() string
}

type staticConfig struct {
	uri  string
	name string
}

func (c staticConfig) DbURI() string  { return c.uri }
func (c staticConfig) DbName() string { return c.name }

// NewStaticConfig is a fixed DbConfig, for one shot commands and tests.
func NewStaticConfig(uri string, name string) DbConfig {
	return staticConfig{uri, name}
}
