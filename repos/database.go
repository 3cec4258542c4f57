package repos

// DB abstracts the storage engine. Sessions are the only state this
// service owns; everything else lives in the external record service.
type DB interface {
	NewSessionRepository() SessionRepository
	Close() error
}
