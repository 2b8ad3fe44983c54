package storage

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// GetMemoryStats returns current memory usage statistics
func (s *Store) GetMemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	s.mu.RLock()
	collections := len(s.collections)
	s.mu.RUnlock()

	return map[string]interface{}{
		"alloc_mb":       m.Alloc / 1024 / 1024,
		"sys_mb":         m.Sys / 1024 / 1024,
		"num_goroutines": runtime.NumGoroutine(),
		"collections":    collections,
		"dirty":          s.IsDirty(),
	}
}

// StartBackgroundWorkers starts the periodic snapshot saver when both a
// snapshot file and an interval are configured
func (s *Store) StartBackgroundWorkers() {
	if !s.backgroundSave || s.snapshotFile == "" {
		return
	}

	s.backgroundWg.Add(1)
	go func() {
		defer s.backgroundWg.Done()
		ticker := time.NewTicker(s.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.saveIfDirty()
			case <-s.stopChan:
				return
			}
		}
	}()
	s.logger.Info("background save enabled",
		zap.String("file", s.snapshotFile),
		zap.Duration("interval", s.saveInterval),
	)
}

// StopBackgroundWorkers stops background workers; safe to call more than once
func (s *Store) StopBackgroundWorkers() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.backgroundWg.Wait()
}

func (s *Store) saveIfDirty() {
	if !s.IsDirty() {
		s.logger.Debug("no changes to save")
		return
	}
	start := time.Now()
	if err := s.Save(); err != nil {
		s.logger.Error("background save failed", zap.Error(err))
		return
	}
	s.logger.Debug("background save completed", zap.Duration("took", time.Since(start)))
}
