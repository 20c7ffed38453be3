// Package snapshot stores aggregated ticker sets in Redis.
//
// A snapshot is written after a complete "all tickers" collection and kept
// for a fixed retention period. The store is a sink for consumers of the
// proxy; the API client never reads from it.
//
// # Basic Usage
//
//	store := snapshot.NewStore(redisClient, 15*time.Minute)
//
//	resp := cmc.GetAllTickers(ctx, "EUR")
//	snap, err := snapshot.NewTickerSnapshot("EUR", resp, store.Retention())
//	if err != nil {
//		return err
//	}
//	if err := store.Save(ctx, snap); err != nil {
//		return err
//	}
//
//	snap, err = store.Load(ctx, snapshot.Key{Kind: snapshot.KindTickers, Converter: "EUR"})
//	if errors.Is(err, snapshot.ErrNotFound) {
//		// nothing stored yet
//	}
//	tickers, err := snap.Tickers()
package snapshot
