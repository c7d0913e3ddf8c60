/*
Package ledger implements the append-only wallet ledger store.

Every balance change is one immutable WalletTransaction row plus the matching
adjustment of the wallet's running counter, written inside a single unit of
work. Rows are never updated in place; corrections void and recreate.

Usage:

	svc := ledger.NewService(repo, cache, settlementEngine, nil)

	txn, err := svc.Append(ctx, ledger.AppendInput{
	    WalletID:    walletID,
	    Kind:        models.KindCredit,
	    Amount:      50000,
	    Method:      models.MethodCash,
	    Description: "Cash top up",
	    Reference:   "TRX-2024-0001",
	    Actor:       actor,
	})

When the appended transaction is a credit, the configured CreditHook (the
settlement engine) runs inside the same unit of work, so a top up and the
settlement debits it triggers commit or roll back together.

Error handling:

  - ErrInvalidAmount / ErrInvalidKind / ErrInvalidMethod / ErrMissingReference:
    rejected before any write
  - ErrInsufficientBalance: debit exceeds the live balance, rejected before any write
  - ErrDuplicateReference: the reference string is already taken
  - ErrWalletNotFound: unknown wallet id
*/
package ledger
