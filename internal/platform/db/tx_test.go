package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
)

type stubTx struct{ pgx.Tx }

func TestTxFromContext(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("empty context yielded a transaction")
	}

	tx := &stubTx{}
	ctx := context.WithValue(context.Background(), TxKey, pgx.Tx(tx))
	if got := TxFromContext(ctx); got != pgx.Tx(tx) {
		t.Errorf("TxFromContext = %v, want the stored transaction", got)
	}
}
