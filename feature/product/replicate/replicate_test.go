package replicate_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"giftlist-tools/core/environment"
	"giftlist-tools/core/reconcile"
	"giftlist-tools/core/store"
	"giftlist-tools/core/store/local"
	"giftlist-tools/core/store/mocks"
	"giftlist-tools/feature/product/models"
	"giftlist-tools/feature/product/replicate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeResolver struct {
	stores map[string]store.Store
	errs   map[string]error
}

func (f *fakeResolver) Resolve(ctx context.Context, env string) (store.Store, error) {
	if err, ok := f.errs[env]; ok {
		return nil, err
	}
	s, ok := f.stores[env]
	if !ok {
		return nil, environment.ErrUnknownEnvironment
	}
	return s, nil
}

func localStores(t *testing.T, envs ...string) map[string]store.Store {
	t.Helper()
	opener := local.NewOpener(t.TempDir(), nil)
	t.Cleanup(func() { _ = opener.Close() })

	out := make(map[string]store.Store, len(envs))
	for _, env := range envs {
		s, err := opener.Open(context.Background(), environment.Request{
			Environment: environment.Environment{Name: env},
			Table:       "products-" + env,
			Schema:      models.ProductSchema,
		})
		require.NoError(t, err)
		out[env] = s
	}
	return out
}

func product() models.CatalogProduct {
	return models.NewCatalogProduct(models.ProductDetails{
		Brand:      "John Lewis",
		Details:    "Safari Mobile",
		Retailer:   "johnlewis.com",
		ImageURL:   "https://johnlewis.scene7.com/is/image/JohnLewis/237244063",
		ProductURL: "https://www.johnlewis.com/john-lewis-partners-safari-mobile/p3439165",
		Price:      "30.99",
	}, "12345678-prod-0001-1234-abcdefghijkl", time.Unix(1700000000, 0))
}

func TestReplicate_AllEnvironments(t *testing.T) {
	stores := localStores(t, "test", "staging", "prod")
	engine := replicate.NewEngine(&fakeResolver{stores: stores}, nil)
	p := product()

	results, failed := engine.Replicate(context.Background(), p, []string{"test", "staging", "prod"})
	assert.False(t, failed)
	assert.Equal(t, reconcile.Results{
		"test":    "Success:" + p.ProductID,
		"staging": "Success:" + p.ProductID,
		"prod":    "Success:" + p.ProductID,
	}, results)

	for env, s := range stores {
		item, err := s.Get(context.Background(), models.ProductKey(p.ProductID))
		require.NoError(t, err, env)
		got, err := models.CatalogFromItem(item)
		require.NoError(t, err)
		assert.Equal(t, p, got, env)
	}
}

func TestReplicate_FanOutIsolation(t *testing.T) {
	stores := localStores(t, "test", "prod")
	resolver := &fakeResolver{
		stores: stores,
		errs: map[string]error{
			"staging": &environment.CredentialError{Environment: "staging", RoleARN: "arn:aws:iam::222:role/x", Err: errors.New("AccessDenied")},
		},
	}
	p := product()

	results, failed := replicate.NewEngine(resolver, nil).Replicate(context.Background(), p, []string{"test", "staging", "prod"})
	assert.True(t, failed)
	assert.Len(t, results, 3)
	assert.Equal(t, "Success:"+p.ProductID, results["test"])
	assert.Equal(t, "Success:"+p.ProductID, results["prod"])
	assert.Contains(t, results["staging"], "Failed:")
	assert.Contains(t, results["staging"], "AccessDenied")
}

func TestReplicate_PutFailure(t *testing.T) {
	broken := new(mocks.Store)
	broken.On("Name").Return("products-staging")
	broken.On("Put", mock.Anything, mock.Anything, store.None).Return(errors.New("throttled"))

	stores := localStores(t, "test")
	stores["staging"] = broken

	results, failed := replicate.NewEngine(&fakeResolver{stores: stores}, nil).
		Replicate(context.Background(), product(), []string{"staging", "test"})

	assert.True(t, failed)
	assert.Equal(t, "Failed:Product could not be created (products-staging).", results["staging"])
	assert.Equal(t, "Success:12345678-prod-0001-1234-abcdefghijkl", results["test"])
	broken.AssertExpectations(t)
}

func TestReplicate_NoTargets(t *testing.T) {
	results, failed := replicate.NewEngine(&fakeResolver{}, nil).Replicate(context.Background(), product(), nil)
	assert.False(t, failed)
	assert.Empty(t, results)
}
