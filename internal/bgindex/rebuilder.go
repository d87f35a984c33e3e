package bgindex

import "time"

// runRebuilder is a dedicated goroutine that wakes every rebuildPeriod
// and, only if symbols changed since the last cycle, rebuilds and
// publishes a Heavy index. A symbol update racing with the exchange
// below is benign, the next cycle repeats the work.
func (bi *BackgroundIndex) runRebuilder() {
	defer bi.rebuilderWG.Done()

	ticker := time.NewTicker(bi.rebuildPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-bi.stopCh:
			return
		case <-ticker.C:
			if bi.symbolsUpdated.Swap(false) {
				bi.publishHeavy()
			}
		}
	}
}
