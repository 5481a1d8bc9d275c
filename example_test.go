package stride_test

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"github.com/webstride/stride"
)

// Example demonstrates a small checkout test: locate elements with By
// strategies, act through element handles, and let the runner pace the
// steps, capture failure artifacts and log the outcome.
func Example() {
	settings := stride.DefaultSettings().Merge(stride.Settings{
		Name:        "checkout smoke",
		WaitTimeout: 15 * time.Second,
		StepDelay:   time.Second,
		ArtifactDir: "artifacts",
	})

	suite := stride.NewSuite().
		Step("visit store", func(ctx context.Context) error {
			return chromedp.Run(ctx,
				chromedp.Navigate("https://store.example.com/"),
				stride.UntilTitleContains("Store"),
			)
		}).
		Step("add to cart", func(ctx context.Context) error {
			buy, err := stride.ByCSS("button.add-to-cart").Wait(ctx)
			if err != nil {
				return err
			}
			if err := buy.Click(ctx); err != nil {
				return err
			}
			return chromedp.Run(ctx, stride.UntilElementTextIs(stride.ByID("cart-count"), "1"))
		}).
		Recovery("dismiss promo dialog", func(ctx context.Context) error {
			dismiss, err := stride.ByCSS(".promo .close").Find(ctx)
			if err != nil {
				return err
			}
			return dismiss.Click(ctx)
		})

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	runner := stride.NewRunner(settings,
		stride.WithLogger(zerolog.New(os.Stderr)),
	)
	if _, err := runner.Run(ctx, suite); err != nil {
		log.Fatal(err)
	}
}
