package models

// All lists every persisted model, used by dev AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&Transaction{},
		&IntegrationEvent{},
		&Affiliate{},
		&Commission{},
		&DailyMetric{},
		&DirectoryMirrorEntry{},
		&Discrepancy{},
		&SecurityEvent{},
		&SyncAlert{},
	}
}
