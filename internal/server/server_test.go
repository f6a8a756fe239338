package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanderheijden86/fundtrail/internal/datasource"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestStore(t *testing.T) *datasource.SQLiteStore {
	t.Helper()
	store, err := datasource.OpenSQLite(filepath.Join(t.TempDir(), "case.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	rows := []datasource.Transaction{
		{Layer: 1, FromAccount: "V1", ToAccount: "M1", AckNo: "ACK1", TxnID: "T1", Amount: model.ParseMoney("1000"), IFSCCode: "SBIN0001234"},
		{Layer: 2, FromAccount: "M1", ToAccount: "A2", AckNo: "ACK1", TxnID: "T2", Amount: model.ParseMoney("900"),
			HoldTxnID: "H1", HoldAmount: model.ParseMoney("400"), BankName: "HDFC"},
	}
	require.NoError(t, store.Insert(context.Background(), rows))
	return store
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleGraph(t *testing.T) {
	router := NewRouter(newTestStore(t), nil)

	w := do(router, http.MethodGet, "/graph_data/ACK1", "")
	require.Equal(t, http.StatusOK, w.Code)

	doc, err := trail.DecodeDocument(w.Body.Bytes())
	require.NoError(t, err)
	tree, err := trail.FromDocument(doc)
	require.NoError(t, err)
	path := trail.FindPath(tree.Root, "A2")
	require.Len(t, path, 4)
	assert.NotNil(t, path[3].Data.Hold)
}

func TestHandleGraphNoData(t *testing.T) {
	router := NewRouter(newTestStore(t), nil)

	w := do(router, http.MethodGet, "/graph_data/NOPE", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, datasource.MsgNoTransactions, body["error"])
}

func TestHandleHolds(t *testing.T) {
	router := NewRouter(newTestStore(t), nil)

	w := do(router, http.MethodGet, "/put_on_hold_transactions/ACK1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var rows []model.HoldRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "A2", rows[0].AccountNumber)
	assert.Equal(t, "400", rows[0].Amount.Amount.String())

	w = do(router, http.MethodGet, "/put_on_hold_transactions/NOPE", "")
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestHandleSaveKYC(t *testing.T) {
	router := NewRouter(newTestStore(t), nil)

	w := do(router, http.MethodPost, "/save_kyc", `{"txn_id":"T2","name":"Ravi","aadhar":"123412341234","mobile":"9876543210","address":"Kochi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success"}`, w.Body.String())

	w = do(router, http.MethodPost, "/save_kyc", `{"txn_id":"T404","name":"Ravi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Transaction not found"}`, w.Body.String())

	w = do(router, http.MethodPost, "/save_kyc", `{"txn_id":"T2","name":"Ravi","mobile":"12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPost, "/save_kyc", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAckNumbers(t *testing.T) {
	router := NewRouter(newTestStore(t), nil)

	w := do(router, http.MethodGet, "/available_ack_nos", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"available_ack_nos":["ACK1"]}`, w.Body.String())
}

// TestHTTPSourceAgainstServer runs the viewer's client against the real
// router end to end.
func TestHTTPSourceAgainstServer(t *testing.T) {
	srv := httptest.NewServer(NewRouter(newTestStore(t), nil))
	defer srv.Close()

	src := datasource.NewHTTPSource(srv.URL)
	ctx := context.Background()

	tree, err := datasource.LoadTree(ctx, src, "ACK1")
	require.NoError(t, err)
	assert.Equal(t, "Victim 1", tree.Root.Children[0].VictimLabel)

	require.NoError(t, src.SaveKYC(ctx, model.KYCUpdate{TxnID: "T1", Name: "Asha"}))

	tree, err = datasource.LoadTree(ctx, src, "ACK1")
	require.NoError(t, err)
	m1 := trail.FindPath(tree.Root, "M1")
	require.Len(t, m1, 3)
	assert.True(t, m1[2].Data.HasKYC())

	_, err = src.Graph(ctx, "NOPE")
	assert.True(t, datasource.IsNoData(err))
}
