package notfound_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"giftlist-tools/core/environment"
	"giftlist-tools/core/metrics"
	"giftlist-tools/core/store"
	"giftlist-tools/core/store/local"
	"giftlist-tools/core/store/mocks"
	"giftlist-tools/feature/notfound"
	"giftlist-tools/feature/product/models"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	notfoundID = "12345678-notf-0010-1234-abcdefghijkl"
	listID     = "12345678-list-0001-1234-abcdefghijkl"
	userID     = "12345678-user-0001-1234-abcdefghijkl"
	catalogID  = "12345678-prod-abcd-1234-abcdefghijkl"
)

var tables = notfound.Tables{Notfound: "notfound-test", Lists: "lists-test"}

type fixture struct {
	svc      *notfound.Service
	resolver *environment.Resolver
	app      *fiber.App
}

func newResolver(t *testing.T) *environment.Resolver {
	t.Helper()
	opener := local.NewOpener(t.TempDir(), nil)
	t.Cleanup(func() { _ = opener.Close() })

	resolver, err := environment.NewResolver(
		[]environment.Environment{{Name: "test", Table: "products-test", Backend: environment.BackendLocal}},
		"test",
		environment.Backends{environment.BackendLocal: opener},
		environment.Options{ProductSchema: models.ProductSchema},
		nil,
	)
	require.NoError(t, err)
	return resolver
}

func newFixture(t *testing.T, resolver notfound.Resolver) *fixture {
	t.Helper()
	base := newResolver(t)
	if resolver == nil {
		resolver = base
	}

	svc := notfound.NewService(resolver, "test", tables, zap.NewNop())
	svc.NewID = func() string { return catalogID }

	app := fiber.New()
	notfound.NewHandler(svc).RegisterRoutes(app)
	return &fixture{svc: svc, resolver: base, app: app}
}

func (f *fixture) table(t *testing.T, name string, schema store.KeySchema) store.Store {
	t.Helper()
	s, err := f.resolver.ResolveTable(context.Background(), "test", name, schema)
	require.NoError(t, err)
	return s
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.table(t, tables.Notfound, models.ProductSchema).Put(ctx, store.Item{
		"productId":  store.S(notfoundID),
		"createdBy":  store.S(userID),
		"brand":      store.S("JL"),
		"details":    store.S("Safari Mobile"),
		"productUrl": store.S("https://www.johnlewis.com/p3439165"),
	}, store.None))

	lists := f.table(t, tables.Lists, models.ListSchema)
	for _, item := range []store.Item{
		{"PK": store.S("USER#" + userID), "SK": store.S("USER#" + userID), "name": store.S("Test User1")},
		{"PK": store.S(models.ListPK(listID)), "SK": store.S("USER#" + userID), "title": store.S("Child User1 1st Birthday")},
		{"PK": store.S(models.ListPK(listID)), "SK": store.S("PRODUCT#" + notfoundID), "quantity": {N: aws.String("2")}, "type": store.S("notfound")},
	} {
		require.NoError(t, lists.Put(ctx, item, store.None))
	}
}

func do(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

// tableResolver swaps named tables for test doubles.
type tableResolver struct {
	notfound.Resolver
	tables map[string]store.Store
	errs   map[string]error
}

func (r *tableResolver) ResolveTable(ctx context.Context, env, table string, schema store.KeySchema) (store.Store, error) {
	if err, ok := r.errs[table]; ok {
		return nil, err
	}
	if s, ok := r.tables[table]; ok {
		return s, nil
	}
	return r.Resolver.ResolveTable(ctx, env, table, schema)
}

func TestHandleList(t *testing.T) {
	f := newFixture(t, nil)

	status, body := do(t, f.app, "GET", "/notfound", "")
	assert.Equal(t, 200, status)
	assert.Empty(t, body["items"])

	f.seed(t)
	status, body = do(t, f.app, "GET", "/notfound", "")
	assert.Equal(t, 200, status)
	items := body["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, notfoundID, items[0].(map[string]any)["productId"])
	assert.Equal(t, userID, items[0].(map[string]any)["createdBy"])
}

func TestHandleCount(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	status, body := do(t, f.app, "GET", "/notfound/count", "")
	assert.Equal(t, 200, status)
	assert.Equal(t, float64(1), body["count"])
}

func TestHandleCount_ScanFailure(t *testing.T) {
	broken := new(mocks.Store)
	broken.On("Scan", mock.Anything).Return(nil, errors.New("throttled"))

	f := newFixture(t, nil)
	f.svc = notfound.NewService(&tableResolver{Resolver: f.resolver, tables: map[string]store.Store{tables.Notfound: broken}}, "test", tables, nil)
	f.app = fiber.New()
	notfound.NewHandler(f.svc).RegisterRoutes(f.app)

	status, body := do(t, f.app, "GET", "/notfound/count", "")
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], "throttled")
	broken.AssertExpectations(t)
}

func TestHandleGet(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	status, body := do(t, f.app, "GET", "/notfound/"+notfoundID, "")
	assert.Equal(t, 200, status)
	assert.Equal(t, notfoundID, body["productId"])
	assert.Equal(t, "Test User1", body["creatorsName"])
	assert.Equal(t, listID, body["listId"])
	assert.Equal(t, "Child User1 1st Birthday", body["listTitle"])
}

func TestHandleGet_NoList(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.table(t, tables.Notfound, models.ProductSchema).Put(context.Background(), store.Item{
		"productId": store.S(notfoundID),
		"createdBy": store.S(userID),
	}, store.None))

	status, body := do(t, f.app, "GET", "/notfound/"+notfoundID, "")
	assert.Equal(t, 200, status)
	assert.Nil(t, body["creatorsName"])
	assert.Nil(t, body["listId"])
	assert.Equal(t, notfound.UnknownListTitle, body["listTitle"])
}

func TestHandleGet_Missing(t *testing.T) {
	f := newFixture(t, nil)

	status, body := do(t, f.app, "GET", "/notfound/"+notfoundID, "")
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], "no product exists with id "+notfoundID)

	_, err := f.svc.Get(context.Background(), notfoundID)
	assert.ErrorIs(t, err, notfound.ErrProductNotFound)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestHandlePromote(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)
	reg := metrics.NewRegistry()
	f.svc.WithMetrics(reg)

	status, body := do(t, f.app, "POST", "/notfound/"+notfoundID+"/promote",
		`{"brand":"John Lewis","details":"Safari Mobile","retailer":"johnlewis.com","imageUrl":"https://img/1"}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, catalogID, body["productId"])
	assert.Equal(t, listID, body["listId"])

	catalog, err := f.resolver.Resolve(context.Background(), "test")
	require.NoError(t, err)
	item, err := catalog.Get(context.Background(), models.ProductKey(catalogID))
	require.NoError(t, err)
	assert.Equal(t, "https://www.johnlewis.com/p3439165", item.String("productUrl"))

	_, err = f.table(t, tables.Notfound, models.ProductSchema).Get(context.Background(), models.ProductKey(notfoundID))
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Equal(t, float64(1), testutil.ToFloat64(reg.Promotions.WithLabelValues("ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.ListItemsRelinked))
}

func TestHandlePromote_InvalidBody(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	status, body := do(t, f.app, "POST", "/notfound/"+notfoundID+"/promote", `{"brand":"John Lewis"}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "request did not contain the details", body["error"])
}

func TestHandlePromote_MissingProduct(t *testing.T) {
	f := newFixture(t, nil)
	reg := metrics.NewRegistry()
	f.svc.WithMetrics(reg)

	status, body := do(t, f.app, "POST", "/notfound/"+notfoundID+"/promote",
		`{"brand":"John Lewis","details":"Safari Mobile","retailer":"johnlewis.com","imageUrl":"https://img/1"}`)
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], notfoundID)
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.Promotions.WithLabelValues("failed")))
}

func TestHandlePromote_PartialFailure(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)

	lists := f.table(t, tables.Lists, models.ListSchema)
	broken := new(mocks.Store)
	for _, q := range []store.Query{
		{Index: "SK-index", KeyName: "SK", Value: "PRODUCT#" + notfoundID},
		{KeyName: "PK", Value: models.ListPK(listID)},
	} {
		items, err := lists.Query(context.Background(), q)
		require.NoError(t, err)
		broken.On("Query", mock.Anything, q).Return(items, nil)
	}
	broken.On("Delete", mock.Anything, mock.Anything, store.MustExist).Return(errors.New("throttled"))
	broken.On("Put", mock.Anything, mock.Anything, store.MustNotExist).Return(nil)

	f.svc = notfound.NewService(&tableResolver{Resolver: f.resolver, tables: map[string]store.Store{tables.Lists: broken}}, "test", tables, nil)
	f.svc.NewID = func() string { return catalogID }
	reg := metrics.NewRegistry()
	f.svc.WithMetrics(reg)
	f.app = fiber.New()
	notfound.NewHandler(f.svc).RegisterRoutes(f.app)

	status, body := do(t, f.app, "POST", "/notfound/"+notfoundID+"/promote",
		`{"brand":"John Lewis","details":"Safari Mobile","retailer":"johnlewis.com","imageUrl":"https://img/1"}`)
	assert.Equal(t, 500, status)
	assert.Equal(t, notfound.ErrPromotionIncomplete, body["error"])

	data := body["data"].(map[string]any)
	deletes := data["listDeletes"].(map[string]any)
	assert.Len(t, deletes["failed"], 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(reg.Promotions.WithLabelValues("partial")))
}

func TestHandleList_UnreachableEnvironment(t *testing.T) {
	f := newFixture(t, nil)
	f.svc = notfound.NewService(&tableResolver{
		Resolver: f.resolver,
		errs:     map[string]error{tables.Notfound: &environment.CredentialError{Environment: "test", Err: errors.New("expired")}},
	}, "test", tables, nil)
	f.app = fiber.New()
	notfound.NewHandler(f.svc).RegisterRoutes(f.app)

	status, body := do(t, f.app, "GET", "/notfound", "")
	assert.Equal(t, 500, status)
	assert.Contains(t, body["error"], "expired")
}
