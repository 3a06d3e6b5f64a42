package odooxmlrpc_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odoo-mcp/internal/adapter/outbound/odooxmlrpc"
	"odoo-mcp/internal/usecase"
)

// rpcResponse wraps a payload value into an XML-RPC methodResponse.
func rpcResponse(value string) string {
	return `<?xml version="1.0"?><methodResponse><params><param><value>` +
		value +
		`</value></param></params></methodResponse>`
}

func rpcFault(code int, msg string) string {
	return fmt.Sprintf(`<?xml version="1.0"?><methodResponse><fault><value><struct>`+
		`<member><name>faultCode</name><value><int>%d</int></value></member>`+
		`<member><name>faultString</name><value><string>%s</string></value></member>`+
		`</struct></value></fault></methodResponse>`, code, msg)
}

// route matches a substring of the request body to a canned response.
type route struct {
	bodyContains string
	response     string
}

// newTestClient starts a fake Odoo XML-RPC endpoint answering from the given
// routes and returns a client pointed at it.
func newTestClient(t *testing.T, routes []route) *odooxmlrpc.Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		for _, rt := range routes {
			if strings.Contains(string(body), rt.bodyContains) {
				w.Header().Set("Content-Type", "text/xml")
				_, _ = w.Write([]byte(rt.response))
				return
			}
		}
		t.Errorf("no canned response for request body: %s", body)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client, err := odooxmlrpc.New(odooxmlrpc.Config{
		URL:      server.URL,
		Database: "testdb",
		Username: "admin",
		Password: "secret",
		Timeout:  5 * time.Second,
	}, logger)
	require.NoError(t, err)
	return client
}

func authRoute() route {
	return route{
		bodyContains: "<methodName>authenticate</methodName>",
		response:     rpcResponse("<int>2</int>"),
	}
}

func TestClient_Authenticate(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	t.Run("Success - uid stored", func(t *testing.T) {
		client := newTestClient(t, []route{authRoute()})
		assert.False(client.Connected())
		assert.NoError(client.Authenticate(ctx))
		assert.True(client.Connected())
	})

	t.Run("Rejected - boolean false from server", func(t *testing.T) {
		client := newTestClient(t, []route{{
			bodyContains: "<methodName>authenticate</methodName>",
			response:     rpcResponse("<boolean>0</boolean>"),
		}})
		err := client.Authenticate(ctx)
		assert.ErrorIs(err, usecase.ErrAuthFailed)
		assert.False(client.Connected())
	})
}

func TestClient_Version(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	client := newTestClient(t, []route{{
		bodyContains: "<methodName>version</methodName>",
		response: rpcResponse(`<struct>` +
			`<member><name>server_version</name><value><string>18.0</string></value></member>` +
			`<member><name>server_serie</name><value><string>18.0</string></value></member>` +
			`<member><name>protocol_version</name><value><int>1</int></value></member>` +
			`</struct>`),
	}})

	version, err := client.Version(context.Background())
	require.NoError(err)
	assert.Equal("18.0", version.Series)
	assert.Equal(int64(1), version.ProtocolVersion)
}

func TestClient_DataCallsRequireSession(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	// No routes: any network traffic would fail the test.
	client := newTestClient(t, nil)

	_, err := client.Search(ctx, "res.partner", nil, 10)
	assert.ErrorIs(err, usecase.ErrNotConnected)

	_, err = client.Create(ctx, "res.partner", map[string]interface{}{"name": "Acme"})
	assert.ErrorIs(err, usecase.ErrNotConnected)

	err = client.Unlink(ctx, "res.partner", []int64{1})
	assert.ErrorIs(err, usecase.ErrNotConnected)
}

func TestClient_Search(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t, []route{
		authRoute(),
		{
			bodyContains: "<string>search</string>",
			response: rpcResponse(`<array><data>` +
				`<value><int>1</int></value>` +
				`<value><int>2</int></value>` +
				`<value><int>3</int></value>` +
				`</data></array>`),
		},
	})
	require.NoError(client.Authenticate(ctx))

	ids, err := client.Search(ctx, "res.partner", nil, 100)
	require.NoError(err)
	assert.Equal([]int64{1, 2, 3}, ids)
}

func TestClient_SearchRead(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t, []route{
		authRoute(),
		{
			bodyContains: "<string>search_read</string>",
			response: rpcResponse(`<array><data>` +
				`<value><struct>` +
				`<member><name>id</name><value><int>1</int></value></member>` +
				`<member><name>name</name><value><string>Acme</string></value></member>` +
				`</struct></value>` +
				`</data></array>`),
		},
	})
	require.NoError(client.Authenticate(ctx))

	records, err := client.SearchRead(ctx, "res.partner", nil, []string{"name"}, 10)
	require.NoError(err)
	require.Len(records, 1)
	assert.Equal("Acme", records[0]["name"])
	assert.Equal(int64(1), records[0]["id"])
}

func TestClient_Create(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t, []route{
		authRoute(),
		{
			bodyContains: "<string>create</string>",
			response:     rpcResponse("<int>42</int>"),
		},
	})
	require.NoError(client.Authenticate(ctx))

	id, err := client.Create(ctx, "res.partner", map[string]interface{}{"name": "Acme"})
	require.NoError(err)
	require.Equal(int64(42), id)
}

func TestClient_WriteUnlink(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	t.Run("Write success", func(t *testing.T) {
		client := newTestClient(t, []route{
			authRoute(),
			{bodyContains: "<string>write</string>", response: rpcResponse("<boolean>1</boolean>")},
		})
		require.NoError(client.Authenticate(ctx))
		assert.NoError(client.Write(ctx, "res.partner", []int64{1}, map[string]interface{}{"name": "New"}))
	})

	t.Run("Write refused - false becomes error", func(t *testing.T) {
		client := newTestClient(t, []route{
			authRoute(),
			{bodyContains: "<string>write</string>", response: rpcResponse("<boolean>0</boolean>")},
		})
		require.NoError(client.Authenticate(ctx))
		err := client.Write(ctx, "res.partner", []int64{99}, map[string]interface{}{"name": "New"})
		assert.ErrorContains(err, "refused")
	})

	t.Run("Unlink fault - nonexistent record", func(t *testing.T) {
		client := newTestClient(t, []route{
			authRoute(),
			{bodyContains: "<string>unlink</string>", response: rpcFault(2, "Record does not exist or has been deleted.")},
		})
		require.NoError(client.Authenticate(ctx))
		err := client.Unlink(ctx, "res.partner", []int64{99})
		assert.ErrorContains(err, "Record does not exist")
	})

	t.Run("Unlink success", func(t *testing.T) {
		client := newTestClient(t, []route{
			authRoute(),
			{bodyContains: "<string>unlink</string>", response: rpcResponse("<boolean>1</boolean>")},
		})
		require.NoError(client.Authenticate(ctx))
		assert.NoError(client.Unlink(ctx, "res.partner", []int64{1}))
	})
}

func TestClient_FieldsGet(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)
	ctx := context.Background()

	client := newTestClient(t, []route{
		authRoute(),
		{
			bodyContains: "<string>fields_get</string>",
			response: rpcResponse(`<struct>` +
				`<member><name>name</name><value><struct>` +
				`<member><name>string</name><value><string>Name</string></value></member>` +
				`<member><name>type</name><value><string>char</string></value></member>` +
				`<member><name>required</name><value><boolean>1</boolean></value></member>` +
				`</struct></value></member>` +
				`<member><name>email</name><value><struct>` +
				`<member><name>string</name><value><string>Email</string></value></member>` +
				`<member><name>help</name><value><string>Primary email address</string></value></member>` +
				`<member><name>type</name><value><string>char</string></value></member>` +
				`<member><name>required</name><value><boolean>0</boolean></value></member>` +
				`</struct></value></member>` +
				`</struct>`),
		},
	})
	require.NoError(client.Authenticate(ctx))

	fields, err := client.FieldsGet(ctx, "res.partner")
	require.NoError(err)
	require.Len(fields, 2)
	assert.Equal("Name", fields["name"].Label)
	assert.True(fields["name"].Required)
	assert.Equal("Primary email address", fields["email"].Help)
	assert.False(fields["email"].Required)
}
