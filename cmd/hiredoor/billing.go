package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jonathan/hiredoor/internal/account"
	"github.com/jonathan/hiredoor/internal/api"
	"github.com/jonathan/hiredoor/internal/notify"
	"github.com/jonathan/hiredoor/internal/types"
)

// portalReturnPath is where the billing portal sends the user back to.
const portalReturnPath = "/pricing"

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Plans, purchases and the billing portal",
}

var billingPlansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List subscription plans and credit packs",
	Args:  cobra.NoArgs,
	RunE:  withApp(runBillingPlans),
}

var billingCheckoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Buy a plan (--plan) or a credit pack (--pack)",
	Args:  cobra.NoArgs,
	RunE:  withApp(runBillingCheckout),
}

var billingPortalCmd = &cobra.Command{
	Use:   "portal",
	Short: "Open the billing portal to manage or cancel a subscription",
	Args:  cobra.NoArgs,
	RunE:  withApp(runBillingPortal),
}

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "Token balance and history",
}

var tokensUsageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded token usage",
	Args:  cobra.NoArgs,
	RunE:  withApp(runTokensUsage),
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Show plan, tokens and today's AI email allowance",
	Args:  cobra.NoArgs,
	RunE:  withApp(runAccount),
}

var (
	checkoutPlan string
	checkoutPack int
)

func init() {
	billingCheckoutCmd.Flags().StringVar(&checkoutPlan, "plan", "", "Plan to subscribe to (starter|pro|power)")
	billingCheckoutCmd.Flags().IntVar(&checkoutPack, "pack", 0, "Credit pack to buy (50|100 tokens)")
	billingCheckoutCmd.MarkFlagsMutuallyExclusive("plan", "pack")
	billingCheckoutCmd.MarkFlagsOneRequired("plan", "pack")

	billingCmd.AddCommand(billingPlansCmd)
	billingCmd.AddCommand(billingCheckoutCmd)
	billingCmd.AddCommand(billingPortalCmd)
	rootCmd.AddCommand(billingCmd)

	tokensCmd.AddCommand(tokensUsageCmd)
	rootCmd.AddCommand(tokensCmd)

	rootCmd.AddCommand(accountCmd)
}

// summary fetches the user record and derives the plan and usage state.
func (a *app) summary(ctx context.Context) (string, account.Summary, error) {
	user, err := a.requireUser(ctx)
	if err != nil {
		return "", account.Summary{}, err
	}
	record, err := a.client.GetUser(ctx, user.ID)
	if err != nil {
		return "", account.Summary{}, err
	}
	name := types.Deref(record.Name)
	if name == "" {
		name = user.DisplayName()
	}
	return name, account.Summarize(record, now()), nil
}

// openURL prints url and tries to open it in the browser.
func (a *app) openURL(url string) {
	a.println("Continue in your browser:\n%s", url)
	if err := openBrowser(url); err != nil {
		a.log.Debug("failed to open browser", "error", err)
	}
}

func runBillingPlans(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	current := account.PlanFree
	if a.session.IsAuthenticated(ctx) {
		if _, s, err := a.summary(ctx); err == nil {
			current = s.Plan
		} else {
			a.log.Debug("failed to load current plan", "error", err)
		}
	}
	a.printer.PrintPlans(current)
	return nil
}

func runBillingCheckout(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	req := types.CheckoutRequest{PlanID: checkoutPlan}
	if checkoutPack != 0 {
		if _, ok := account.CreditPackByTokens(checkoutPack); !ok {
			return fmt.Errorf("unknown credit pack %d (expected 50 or 100)", checkoutPack)
		}
		req.TokenPack = strconv.Itoa(checkoutPack)
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid checkout: %w", err)
	}

	_, s, err := a.summary(ctx)
	if err != nil {
		return err
	}
	if req.TokenPack != "" && !s.IsSubscribed {
		return fmt.Errorf("credit packs are available to subscribers: choose a plan first with `hiredoor billing plans`")
	}

	resp, err := a.client.CreateCheckoutSession(ctx, req)
	if err != nil {
		notify.Error(a.notifier, api.UserMessage(err))
		return err
	}
	a.openURL(resp.CheckoutURL)
	return nil
}

func runBillingPortal(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	resp, err := a.client.CreatePortalSession(ctx, portalReturnPath)
	if err != nil {
		notify.Error(a.notifier, api.UserMessage(err))
		return err
	}
	a.openURL(resp.PortalURL)
	return nil
}

func runTokensUsage(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	resp, err := a.client.GetTokenUsage(ctx)
	if err != nil {
		return err
	}
	a.printer.PrintTokenUsage(resp.Usage)
	return nil
}

func runAccount(ctx context.Context, a *app, _ *cobra.Command, _ []string) error {
	name, s, err := a.summary(ctx)
	if err != nil {
		return err
	}
	a.printer.PrintAccount(name, s)
	return nil
}
