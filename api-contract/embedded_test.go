package apicontract_test

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/planner-shop/api-contract"
)

func TestSpec(t *testing.T) {
	t.Run("Should be a valid OpenAPI document", func(t *testing.T) {
		doc, err := openapi3.NewLoader().LoadFromData(apicontract.GetSpecBytes())
		require.NoError(t, err)
		require.NoError(t, doc.Validate(context.Background()))
	})

	t.Run("Should document the import endpoints", func(t *testing.T) {
		doc, err := openapi3.NewLoader().LoadFromData(apicontract.GetSpecBytes())
		require.NoError(t, err)

		for _, p := range []string{"/imports", "/imports/files", "/imports/files/{filename}"} {
			assert.NotNil(t, doc.Paths.Find(p), p)
		}
	})
}
