package fogcoord

import (
	"context"

	"github.com/fogcompute/platform/fogerr"
)

// Transferer is the opaque DAO account-transfer operation the coordinator
// calls as part of a deployment teardown that owes pending rewards (§6):
// `Transfer(from, to, amount, memo) → Ok|Err`. The transport and ledger
// implementation are outside this module's scope.
type Transferer interface {
	Transfer(ctx context.Context, from, to string, amount float64, memo string) error
}

// Transfer is one pending reward payment to settle during cleanup.
type Transfer struct {
	From   string
	To     string
	Amount float64
	Memo   string
}

// RewardCleanup performs the two-phase cleanup operation from §9/§8#6:
// phase 1 attempts every pending transfer in order, keeping a rollback log
// of completed ones; if any transfer fails, every already-completed
// transfer in this call is reversed (by swapping From/To) before returning
// the error, so no reward is lost and no partial payout survives. Phase 2
// (cleanupFn, e.g. releasing the deployment's resources) only runs if phase
// 1 fully succeeds.
func RewardCleanup(ctx context.Context, dao Transferer, transfers []Transfer, cleanupFn func() error) error {
	completed := make([]Transfer, 0, len(transfers))

	for _, tr := range transfers {
		if err := dao.Transfer(ctx, tr.From, tr.To, tr.Amount, tr.Memo); err != nil {
			rollbackErr := rollback(ctx, dao, completed)
			if rollbackErr != nil {
				return fogerr.New(fogerr.KindDependencyMissing,
					"transfer failed (%v) AND rollback failed (%v); manual reconciliation required",
					err, rollbackErr)
			}
			return fogerr.New(fogerr.KindDependencyMissing, "reward transfer failed: %v", err)
		}
		completed = append(completed, tr)
	}

	if err := cleanupFn(); err != nil {
		// Resource cleanup failed after rewards were already paid: reverse
		// the payouts too, since §6 requires "no reward is lost" but also
		// implies the cleanup and the payout succeed or fail together.
		if rollbackErr := rollback(ctx, dao, completed); rollbackErr != nil {
			return fogerr.New(fogerr.KindDependencyMissing,
				"cleanup failed (%v) AND rollback failed (%v); manual reconciliation required",
				err, rollbackErr)
		}
		return fogerr.New(fogerr.KindDependencyMissing, "cleanup failed after reward transfers: %v", err)
	}
	return nil
}

// rollback reverses each completed transfer in reverse order by transferring
// the same amount back from To to From.
func rollback(ctx context.Context, dao Transferer, completed []Transfer) error {
	for i := len(completed) - 1; i >= 0; i-- {
		tr := completed[i]
		if err := dao.Transfer(ctx, tr.To, tr.From, tr.Amount, "rollback: "+tr.Memo); err != nil {
			return err
		}
	}
	return nil
}
