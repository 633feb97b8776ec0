package repository

// Schema definitions for the Kestrel database.
// Compatible with both SQLite and PostgreSQL.

const schemaAssessments = `
CREATE TABLE IF NOT EXISTS assessments (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL,
    analyst TEXT,
    input TEXT NOT NULL,
    request TEXT NOT NULL,
    response TEXT NOT NULL,
    is_fraud INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessments_tx ON assessments(transaction_id);
CREATE INDEX IF NOT EXISTS idx_assessments_created ON assessments(created_at);
CREATE INDEX IF NOT EXISTS idx_assessments_fraud ON assessments(is_fraud);
`

const schemaFlaggedTransactions = `
CREATE TABLE IF NOT EXISTS flagged_transactions (
    id TEXT PRIMARY KEY,
    transaction_id TEXT NOT NULL,
    amount REAL NOT NULL,
    payment_method TEXT NOT NULL,
    category TEXT NOT NULL,
    user_email TEXT NOT NULL,
    fraud_probability REAL NOT NULL,
    risk_level TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'pending',
    flagged_at TIMESTAMP NOT NULL,
    reviewed_by TEXT,
    reviewed_at TIMESTAMP,
    risk_factors TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_flagged_tx ON flagged_transactions(transaction_id);
CREATE INDEX IF NOT EXISTS idx_flagged_status ON flagged_transactions(status);
CREATE INDEX IF NOT EXISTS idx_flagged_at ON flagged_transactions(flagged_at);
`

const schemaUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    role TEXT NOT NULL,
    status TEXT NOT NULL,
    risk_score TEXT,
    joined_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
CREATE INDEX IF NOT EXISTS idx_users_status ON users(status);
`

// schemaSessionState holds the single operator-session row. The fixed
// id keeps it single-row without needing a uniqueness trigger.
const schemaSessionState = `
CREATE TABLE IF NOT EXISTS session_state (
    id INTEGER PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    role TEXT NOT NULL,
    signed_in_at TIMESTAMP NOT NULL
);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaAssessments,
		schemaFlaggedTransactions,
		schemaUsers,
		schemaSessionState,
	}
}
