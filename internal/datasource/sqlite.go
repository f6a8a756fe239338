package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/model"
	"github.com/vanderheijden86/fundtrail/pkg/trail"
)

const schema = `
CREATE TABLE IF NOT EXISTS "transaction" (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	layer INTEGER,
	from_account TEXT,
	to_account TEXT,
	ack_no TEXT,
	bank_name TEXT,
	ifsc_code TEXT,
	txn_date TEXT,
	txn_id TEXT,
	amount REAL,
	disputed_amount REAL,
	action_taken TEXT,
	account_number TEXT,
	state TEXT,
	atm_id TEXT,
	atm_withdraw_amount REAL,
	atm_withdraw_date TEXT,
	atm_location TEXT,
	cheque_no TEXT,
	cheque_withdraw_amount REAL,
	cheque_withdraw_date TEXT,
	cheque_ifsc TEXT,
	put_on_hold_txn_id TEXT,
	put_on_hold_date TEXT,
	put_on_hold_amount REAL,
	kyc_name TEXT,
	kyc_aadhar TEXT,
	kyc_mobile TEXT,
	kyc_address TEXT
);
CREATE INDEX IF NOT EXISTS idx_transaction_ack ON "transaction"(ack_no);
CREATE INDEX IF NOT EXISTS idx_transaction_txn ON "transaction"(txn_id);
`

const columns = `id, layer, from_account, to_account, ack_no, bank_name, ifsc_code,
	txn_date, txn_id, amount, disputed_amount, action_taken, account_number, state,
	atm_id, atm_withdraw_amount, atm_withdraw_date, atm_location,
	cheque_no, cheque_withdraw_amount, cheque_withdraw_date, cheque_ifsc,
	put_on_hold_txn_id, put_on_hold_date, put_on_hold_amount,
	kyc_name, kyc_aadhar, kyc_mobile, kyc_address`

// SQLiteStore is a local case database using the fund-trail server's
// transaction table layout.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens (creating if needed) a case database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	// sqlite serializes writers; one connection avoids SQLITE_BUSY churn.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA cache_size = -16000",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			debug.Log("sqlite %s: %v", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Insert stores transactions in one database transaction.
func (s *SQLiteStore) Insert(ctx context.Context, rows []Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO "transaction" (
		layer, from_account, to_account, ack_no, bank_name, ifsc_code,
		txn_date, txn_id, amount, disputed_amount, action_taken, account_number, state,
		atm_id, atm_withdraw_amount, atm_withdraw_date, atm_location,
		cheque_no, cheque_withdraw_amount, cheque_withdraw_date, cheque_ifsc,
		put_on_hold_txn_id, put_on_hold_date, put_on_hold_amount,
		kyc_name, kyc_aadhar, kyc_mobile, kyc_address
	) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, t := range rows {
		_, err := stmt.ExecContext(ctx,
			nullInt(t.Layer), nullStr(t.FromAccount), nullStr(t.ToAccount), nullStr(t.AckNo),
			nullStr(t.BankName), nullStr(t.IFSCCode), nullStr(t.TxnDate), nullStr(t.TxnID),
			nullMoney(t.Amount), nullMoney(t.DisputedAmount), nullStr(t.ActionTaken),
			nullStr(t.AccountNumber), nullStr(t.State),
			nullStr(t.ATMID), nullMoney(t.ATMAmount), nullStr(t.ATMDate), nullStr(t.ATMLocation),
			nullStr(t.ChequeNo), nullMoney(t.ChequeAmount), nullStr(t.ChequeDate), nullStr(t.ChequeIFSC),
			nullStr(t.HoldTxnID), nullStr(t.HoldDate), nullMoney(t.HoldAmount),
			t.KYCName, t.KYCAadhar, t.KYCMobile, t.KYCAddress,
		)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", t.TxnID, err)
		}
	}
	return tx.Commit()
}

// Transactions returns the rows of one complaint in insertion order.
func (s *SQLiteStore) Transactions(ctx context.Context, ack string) ([]Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+columns+` FROM "transaction" WHERE ack_no = ? ORDER BY id`, strings.TrimSpace(ack))
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTransaction(rows *sql.Rows) (Transaction, error) {
	var t Transaction
	var layer sql.NullInt64
	var from, to, ack, bank, ifsc, date, txnID, action, account, state sql.NullString
	var atmID, atmDate, atmLoc, chequeNo, chequeDate, chequeIFSC, holdID, holdDate sql.NullString
	var amount, disputed, atmAmt, chequeAmt, holdAmt sql.NullFloat64
	var kycName, kycAadhar, kycMobile, kycAddress sql.NullString

	err := rows.Scan(&t.ID, &layer, &from, &to, &ack, &bank, &ifsc,
		&date, &txnID, &amount, &disputed, &action, &account, &state,
		&atmID, &atmAmt, &atmDate, &atmLoc,
		&chequeNo, &chequeAmt, &chequeDate, &chequeIFSC,
		&holdID, &holdDate, &holdAmt,
		&kycName, &kycAadhar, &kycMobile, &kycAddress)
	if err != nil {
		return t, fmt.Errorf("scanning transaction: %w", err)
	}

	t.Layer = int(layer.Int64)
	t.FromAccount, t.ToAccount, t.AckNo = from.String, to.String, ack.String
	t.BankName, t.IFSCCode, t.TxnDate, t.TxnID = bank.String, ifsc.String, date.String, txnID.String
	t.Amount, t.DisputedAmount = money(amount), money(disputed)
	t.ActionTaken, t.AccountNumber, t.State = action.String, account.String, state.String
	t.ATMID, t.ATMAmount, t.ATMDate, t.ATMLocation = atmID.String, money(atmAmt), atmDate.String, atmLoc.String
	t.ChequeNo, t.ChequeAmount, t.ChequeDate, t.ChequeIFSC = chequeNo.String, money(chequeAmt), chequeDate.String, chequeIFSC.String
	t.HoldTxnID, t.HoldDate, t.HoldAmount = holdID.String, holdDate.String, money(holdAmt)
	t.KYCName, t.KYCAadhar, t.KYCMobile, t.KYCAddress = strPtr(kycName), strPtr(kycAadhar), strPtr(kycMobile), strPtr(kycAddress)
	return t, nil
}

// Graph implements Source.
func (s *SQLiteStore) Graph(ctx context.Context, ack string) (*trail.Document, error) {
	rows, err := s.Transactions(ctx, ack)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &NoDataError{Message: MsgNoTransactions}
	}
	return checkDocument(&trail.Document{Root: BuildHierarchy(rows)})
}

// Holds implements Source.
func (s *SQLiteStore) Holds(ctx context.Context, ack string) ([]model.HoldRow, error) {
	rows, err := s.Transactions(ctx, ack)
	if err != nil {
		return nil, err
	}
	return HoldRows(rows), nil
}

// SaveKYC implements Source. The record is stored on the first row with the
// transaction id.
func (s *SQLiteStore) SaveKYC(ctx context.Context, req model.KYCUpdate) error {
	res, err := s.db.ExecContext(ctx, `UPDATE "transaction"
		SET kyc_name = ?, kyc_aadhar = ?, kyc_mobile = ?, kyc_address = ?
		WHERE id = (SELECT id FROM "transaction" WHERE txn_id = ? ORDER BY id LIMIT 1)`,
		req.Name, req.Aadhar, req.Mobile, req.Address, req.TxnID)
	if err != nil {
		return fmt.Errorf("saving kyc: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("saving kyc: %w", err)
	}
	if n == 0 {
		return &KYCError{Message: MsgTxnNotFound}
	}
	return nil
}

// AckNumbers lists the distinct acknowledgement numbers in ascending order.
func (s *SQLiteStore) AckNumbers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ack_no FROM "transaction" WHERE ack_no IS NOT NULL AND ack_no != '' ORDER BY ack_no`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var ack string
		if err := rows.Scan(&ack); err != nil {
			return nil, err
		}
		out = append(out, ack)
	}
	return out, rows.Err()
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: v != 0}
}

func nullMoney(m model.Money) sql.NullFloat64 {
	if !m.Valid {
		return sql.NullFloat64{}
	}
	f, _ := m.Amount.Float64()
	return sql.NullFloat64{Float64: f, Valid: true}
}

func money(f sql.NullFloat64) model.Money {
	if !f.Valid {
		return model.Money{}
	}
	return model.MoneyFromFloat(f.Float64)
}

func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
