package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/Bhaskar-scientist/Valut-Craft/internal/models"
)

// TransactionFilter narrows transaction queries. Zero-valued fields are not
// applied; OrgID is always required. The same rendered WHERE body feeds the
// page query, the count query and the summary aggregation, so one filter
// always describes one consistent set.
type TransactionFilter struct {
	OrgID    string
	Status   models.TransactionStatus
	Type     models.TransactionType
	WalletID string
	From     time.Time
	To       time.Time
}

// whereClause renders the filter as a WHERE body with positional arguments.
func (f TransactionFilter) whereClause() (string, []any) {
	conds := []string{"org_id = $1"}
	args := []any{f.OrgID}

	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.Type != "" {
		args = append(args, string(f.Type))
		conds = append(conds, fmt.Sprintf("transaction_type = $%d", len(args)))
	}
	if f.WalletID != "" {
		args = append(args, f.WalletID)
		conds = append(conds, fmt.Sprintf("(sender_wallet_id = $%d OR receiver_wallet_id = $%d)", len(args), len(args)))
	}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	return strings.Join(conds, " AND "), args
}
