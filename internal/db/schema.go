package db

// Schema is the full PostgreSQL DDL. The balance CHECK backs the guarded
// balance updates in the wallet repository, and the partial unique index
// below wallets backs the one-ACTIVE-PRIMARY-per-user rule against
// concurrent creates.
const Schema = `
CREATE TABLE IF NOT EXISTS organizations (
	id         UUID PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	org_id        UUID NOT NULL REFERENCES organizations(id),
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_users_org ON users (org_id);

CREATE TABLE IF NOT EXISTS wallets (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL REFERENCES users(id),
	org_id     UUID NOT NULL REFERENCES organizations(id),
	balance    NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
	currency   TEXT NOT NULL DEFAULT 'INR',
	type       TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'ACTIVE',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_wallets_primary_active
	ON wallets (user_id) WHERE type = 'PRIMARY' AND status = 'ACTIVE';
CREATE INDEX IF NOT EXISTS idx_wallets_user ON wallets (user_id);
CREATE INDEX IF NOT EXISTS idx_wallets_org ON wallets (org_id);

CREATE TABLE IF NOT EXISTS transactions (
	id                 UUID PRIMARY KEY,
	org_id             UUID NOT NULL REFERENCES organizations(id),
	sender_wallet_id   UUID NOT NULL REFERENCES wallets(id),
	receiver_wallet_id UUID NOT NULL REFERENCES wallets(id),
	amount             NUMERIC(12,2) NOT NULL CHECK (amount > 0),
	status             TEXT NOT NULL DEFAULT 'PENDING',
	transaction_type   TEXT NOT NULL DEFAULT 'INTERNAL_TRANSFER',
	reference_id       TEXT,
	description        TEXT,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	completed_at       TIMESTAMPTZ,
	CHECK (sender_wallet_id <> receiver_wallet_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_transactions_org_reference
	ON transactions (org_id, reference_id) WHERE reference_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_transactions_org_created ON transactions (org_id, created_at DESC, id DESC);
CREATE INDEX IF NOT EXISTS idx_transactions_sender ON transactions (sender_wallet_id);
CREATE INDEX IF NOT EXISTS idx_transactions_receiver ON transactions (receiver_wallet_id);

CREATE TABLE IF NOT EXISTS ledger_entries (
	id             UUID PRIMARY KEY,
	wallet_id      UUID NOT NULL REFERENCES wallets(id),
	transaction_id UUID NOT NULL REFERENCES transactions(id),
	amount         NUMERIC(12,2) NOT NULL,
	type           TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_wallet ON ledger_entries (wallet_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_ledger_entries_transaction ON ledger_entries (transaction_id);
`
