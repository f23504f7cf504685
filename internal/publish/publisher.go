package publish

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"strings"
	"time"
	"unified-price-bot/internal/markup"
	"unified-price-bot/internal/telegram"
	"unified-price-bot/lib/helpers"
	"unified-price-bot/lib/translation"
)

type documentSender interface {
	SendDocument(chat telegram.ChatRef, name string, data []byte, caption string) error
}

// Failure reports which files of a batch could not be delivered.
type Failure struct {
	Failed []string
	Total  int
}

func (e *Failure) Error() string {
	return fmt.Sprintf("failed to publish %d of %d file(s): %s", len(e.Failed), e.Total, strings.Join(e.Failed, ", "))
}

// Publisher delivers finished files to the destination channel.
type Publisher struct {
	sender documentSender
	dest   telegram.ChatRef
}

func New(sender documentSender, dest telegram.ChatRef) *Publisher {
	return &Publisher{sender: sender, dest: dest}
}

// Publish sends each file in sequence order. One failed send does not stop
// the rest of the batch; the returned count is exactly the number of
// successful deliveries.
func (p *Publisher) Publish(out *markup.Output) (int, error) {
	published := 0
	var failed []string

	for _, f := range out.Files {
		caption := fmt.Sprintf("%s\n%s",
			translation.Translate("Price list is current as of %s", helpers.FormatTimestamp(time.Now())),
			f.Name,
		)

		if err := p.sender.SendDocument(p.dest, f.Name, f.Data, caption); err != nil {
			log.Errorf("❌ could not publish %s: %v", f.Name, err)
			failed = append(failed, f.Name)
			continue
		}
		published++
		log.Infof("📤 published %s (%d prices updated)", f.Name, f.PricesUpdated)
	}

	if len(failed) > 0 {
		return published, &Failure{Failed: failed, Total: len(out.Files)}
	}
	return published, nil
}
