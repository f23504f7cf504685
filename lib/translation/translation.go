package translation

import (
	"github.com/leonelquinteros/gotext"
)

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
