// Package event publishes product change notifications.
package event

import (
	"github.com/tuanvumaihuynh/product-catalog/internal/model"
)

const (
	TopicProductCreated = "product.created"
	TopicProductUpdated = "product.updated"
	TopicProductDeleted = "product.deleted"
	TopicProductsPurged = "product.purged"
)

// Message is a notification ready to publish. Key, when set, keeps every
// message about one product on one partition.
type Message struct {
	Topic   string
	Key     string
	Payload any
}

type ProductEvent struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
}

type ProductsPurgedEvent struct {
	DeletedCount int `json:"deleted_count"`
}

func ProductCreated(p model.Product) Message {
	return productMessage(TopicProductCreated, p)
}

func ProductUpdated(p model.Product) Message {
	return productMessage(TopicProductUpdated, p)
}

func ProductDeleted(id string) Message {
	return Message{
		Topic:   TopicProductDeleted,
		Key:     id,
		Payload: ProductEvent{ProductID: id},
	}
}

func ProductsPurged(deletedCount int) Message {
	return Message{
		Topic:   TopicProductsPurged,
		Payload: ProductsPurgedEvent{DeletedCount: deletedCount},
	}
}

func productMessage(topic string, p model.Product) Message {
	return Message{
		Topic: topic,
		Key:   p.ID,
		Payload: ProductEvent{
			ProductID:   p.ID,
			Name:        p.Name,
			Description: p.Description,
			Price:       p.Price.String(),
		},
	}
}
