package event

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/planner-shop/internal/storage/mq"
)

type fakeConsumer struct {
	handlers map[string]mq.HandlerFunc
	ran      bool
}

func (c *fakeConsumer) RegisterHandler(topic string, handler mq.HandlerFunc) error {
	if c.handlers == nil {
		c.handlers = map[string]mq.HandlerFunc{}
	}
	c.handlers[topic] = handler
	return nil
}

func (c *fakeConsumer) Run(context.Context) (mq.CleanupFunc, error) {
	c.ran = true
	return func() {}, nil
}

func TestService(t *testing.T) {
	t.Parallel()

	newService := func() (*Service, *fakeConsumer) {
		consumer := &fakeConsumer{}
		return New(slog.New(slog.NewTextHandler(io.Discard, nil)), consumer), consumer
	}

	t.Run("Should register handlers for every product topic", func(t *testing.T) {
		t.Parallel()

		svc, consumer := newService()
		cleanup, err := svc.Run(context.Background())
		require.NoError(t, err)
		defer cleanup()

		assert.True(t, consumer.ran)
		assert.Contains(t, consumer.handlers, TopicProductCreated)
		assert.Contains(t, consumer.handlers, TopicProductDeleted)
	})

	t.Run("Should handle a well formed payload", func(t *testing.T) {
		t.Parallel()

		svc, consumer := newService()
		_, err := svc.Run(context.Background())
		require.NoError(t, err)

		err = consumer.handlers[TopicProductCreated](context.Background(), TopicProductCreated,
			[]byte(`{"product_id":"p1","sku":"SKU1","price":"9.99","source":"import"}`))
		require.NoError(t, err)
	})

	t.Run("Should reject a malformed payload", func(t *testing.T) {
		t.Parallel()

		svc, consumer := newService()
		_, err := svc.Run(context.Background())
		require.NoError(t, err)

		err = consumer.handlers[TopicProductDeleted](context.Background(), TopicProductDeleted, []byte(`{`))
		require.ErrorContains(t, err, "unmarshal product.deleted event")
	})
}
