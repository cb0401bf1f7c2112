package storage

// Store объединяет все хранилища клиента.
// Реализуется boltdb.Storage и sqlite.Storage.
type Store interface {
	QueueStorage
	BadgeStorage
	MetadataStorage

	// Close closes the underlying database
	Close() error
}
