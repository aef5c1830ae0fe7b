// Package monitor keeps a log of handled chat commands and running totals.
package monitor

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emailgenx/emailgenx/internal/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxMemoryLogs limits the in-memory log cache.
const MaxMemoryLogs = 100

// CommandMonitor records command outcomes to memory and the database.
type CommandMonitor struct {
	db *gorm.DB

	recentLogs []models.CommandLog
	byCommand  map[string]int64
	mu         sync.RWMutex

	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64

	pending sync.WaitGroup
	writeMu sync.Mutex
}

// New creates a monitor and loads totals from previously stored logs.
func New(db *gorm.DB) *CommandMonitor {
	m := &CommandMonitor{
		db:         db,
		recentLogs: make([]models.CommandLog, 0, MaxMemoryLogs),
		byCommand:  make(map[string]int64),
	}
	m.loadStatsFromDB()
	return m
}

// Record logs a command outcome. The database write happens in the background.
func (m *CommandMonitor) Record(entry models.CommandLog) {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}

	m.total.Add(1)
	if entry.Success {
		m.success.Add(1)
	} else {
		m.failed.Add(1)
	}

	m.mu.Lock()
	m.byCommand[entry.Command]++
	m.recentLogs = append([]models.CommandLog{entry}, m.recentLogs...)
	if len(m.recentLogs) > MaxMemoryLogs {
		m.recentLogs = m.recentLogs[:MaxMemoryLogs]
	}
	m.mu.Unlock()

	m.pending.Add(1)
	go func(e models.CommandLog) {
		defer m.pending.Done()
		m.writeMu.Lock()
		defer m.writeMu.Unlock()
		if err := m.db.Create(&e).Error; err != nil {
			log.Printf("[Monitor] Failed to save command log: %v", err)
		}
	}(entry)
}

// Wait blocks until background writes have finished.
func (m *CommandMonitor) Wait() {
	m.pending.Wait()
}

// Logs returns up to limit recent entries, newest first.
func (m *CommandMonitor) Logs(limit int) []models.CommandLog {
	if limit <= 0 || limit > MaxMemoryLogs {
		limit = MaxMemoryLogs
	}

	var logs []models.CommandLog
	if err := m.db.Order("timestamp DESC").Limit(limit).Find(&logs).Error; err != nil {
		log.Printf("[Monitor] Failed to get logs from DB: %v", err)
		m.mu.RLock()
		defer m.mu.RUnlock()
		if limit > len(m.recentLogs) {
			limit = len(m.recentLogs)
		}
		return append([]models.CommandLog(nil), m.recentLogs[:limit]...)
	}
	return logs
}

// Stats returns aggregated totals.
func (m *CommandMonitor) Stats() models.CommandStats {
	m.mu.RLock()
	byCommand := make(map[string]int64, len(m.byCommand))
	for k, v := range m.byCommand {
		byCommand[k] = v
	}
	m.mu.RUnlock()

	return models.CommandStats{
		Total:     m.total.Load(),
		Success:   m.success.Load(),
		Failed:    m.failed.Load(),
		ByCommand: byCommand,
	}
}

// Clear drops all logs from memory and the database.
func (m *CommandMonitor) Clear() error {
	m.Wait()

	m.mu.Lock()
	m.recentLogs = m.recentLogs[:0]
	m.byCommand = make(map[string]int64)
	m.mu.Unlock()

	m.total.Store(0)
	m.success.Store(0)
	m.failed.Store(0)

	if err := m.db.Where("1 = 1").Delete(&models.CommandLog{}).Error; err != nil {
		log.Printf("[Monitor] Failed to clear logs: %v", err)
		return err
	}
	log.Printf("[Monitor] All command logs cleared")
	return nil
}

func (m *CommandMonitor) loadStatsFromDB() {
	var total, success int64
	m.db.Model(&models.CommandLog{}).Count(&total)
	m.db.Model(&models.CommandLog{}).Where("success = ?", true).Count(&success)

	var rows []struct {
		Command string
		N       int64
	}
	m.db.Model(&models.CommandLog{}).Select("command, count(*) as n").Group("command").Scan(&rows)
	for _, row := range rows {
		m.byCommand[row.Command] = row.N
	}

	m.total.Store(total)
	m.success.Store(success)
	m.failed.Store(total - success)

	log.Printf("[Monitor] Loaded stats: total=%d, success=%d, failed=%d", total, success, total-success)
}
