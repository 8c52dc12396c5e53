// Package async runs functions in goroutines and collects their results
// through typed futures.
//
//	futures := make([]*async.Future[int], 0, len(ids))
//	for _, id := range ids {
//		futures = append(futures, async.Go(ctx, func(ctx context.Context) (int, error) {
//			return load(ctx, id)
//		}))
//	}
//	results, err := async.Settle(futures...) // err joins every failure
package async
