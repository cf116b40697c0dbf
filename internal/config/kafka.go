package config

import "time"

// Kafka configures product change notifications. Publishing is disabled when
// no address is set.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:","`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"product-catalog"`

	// DeliveryTimeout bounds both a record's delivery and the wait of the
	// write that published it.
	DeliveryTimeout time.Duration `env:"KAFKA_DELIVERY_TIMEOUT" envDefault:"2s"`
}

func (k Kafka) Enabled() bool {
	return len(k.Addresses) > 0
}
