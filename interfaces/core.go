package interfaces

import "context"

type Listener interface {
	Start(ctx context.Context) error
	Stop()
}

type Processor interface {
	Process(ctx context.Context)
}
