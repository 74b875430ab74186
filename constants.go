package staticd

import "github.com/ehrlich-b/go-staticd/internal/constants"

// Re-export constants for public API
const (
	ReadBufferSize     = constants.ReadBufferSize
	WriteBufferSize    = constants.WriteBufferSize
	MaxFilenameLen     = constants.MaxFilenameLen
	MaxConnections     = constants.MaxFD
	MaxEvents          = constants.MaxEvents
	DefaultWorkerCount = constants.DefaultWorkerCount
	ListenBacklog      = constants.ListenBacklog
)
