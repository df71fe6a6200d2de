package interfaces

import (
	"time"

	"saleprobe/model"
)

type DatabaseHandler interface {
	WriteEvent(event model.DecodedLog, timeStamp time.Time)
	Flush()
	Close()
}
