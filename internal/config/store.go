package config

import (
	"fmt"
	"strings"
	"time"
)

// Store selects the backing table implementation and carries the settings of
// every supported backend; only the selected one is used.
type Store struct {
	Driver   StoreDriver `env:"STORE_DRIVER" envDefault:"dynamodb"`
	DynamoDB DynamoDB
	Postgres Postgres
	SQLite   SQLite
}

type DynamoDB struct {
	Region        string        `env:"DYNAMODB_REGION" envDefault:"us-west-2"`
	Table         string        `env:"DYNAMODB_TABLE" envDefault:"ProductCatalog"`
	Endpoint      string        `env:"DYNAMODB_ENDPOINT"`
	ReadCapacity  int64         `env:"DYNAMODB_READ_CAPACITY" envDefault:"5"`
	WriteCapacity int64         `env:"DYNAMODB_WRITE_CAPACITY" envDefault:"5"`
	TableWait     time.Duration `env:"DYNAMODB_TABLE_WAIT" envDefault:"2m"`
}

type SQLite struct {
	Path string `env:"SQLITE_PATH" envDefault:"catalog.db"`
}

// StoreDriver names a storage backend.
type StoreDriver uint8

const (
	StoreDriverDynamoDB StoreDriver = iota
	StoreDriverPostgres
	StoreDriverSQLite
	StoreDriverMemory
)

var storeDriverNames = [...]string{"dynamodb", "postgres", "sqlite", "memory"}

func (d StoreDriver) String() string {
	if int(d) < len(storeDriverNames) {
		return storeDriverNames[d]
	}
	return fmt.Sprintf("StoreDriver(%d)", d)
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *StoreDriver) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "dynamodb":
		*d = StoreDriverDynamoDB
	case "postgres":
		*d = StoreDriverPostgres
	case "sqlite":
		*d = StoreDriverSQLite
	case "memory":
		*d = StoreDriverMemory
	default:
		return fmt.Errorf("unknown store driver: %s", text)
	}
	return nil
}

func (d StoreDriver) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
