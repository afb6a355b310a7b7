package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
	"github.com/warp/pettycash/report"
)

// RunDemo walks the full workflow with the demo users: the accountant opens
// a fund, the requester submits vouchers, the approver approves one and
// rejects another, the accountant tops up, then reports and the audit trail
// are printed. Requires the demo users to be seeded.
func RunDemo(ctx context.Context, c *Console) error {
	today := generic.Day(c.now())
	day := func(offset int) time.Time { return today.AddDate(0, 0, offset) }

	login := func(username string) (pettycash.Session, error) {
		return c.Login(ctx, username, pettycash.DemoPassword)
	}
	step := func(title string) { c.println("\n" + headerStyle.Render("▸ "+title)) }

	acc, err := login("acc1")
	if err != nil {
		return err
	}
	step("Accountant opens the Office fund with 1,000.00")
	acc, created := c.CreateFund(ctx, acc, "Office", generic.MustMoney("1000.00"))
	if !created.Success {
		return fmt.Errorf("demo: %s", created.Message)
	}
	fundID := created.Data.ID

	req, err := login("req1")
	if err != nil {
		return err
	}
	req = req.WithFund(fundID)

	step("Requester submits a 200.00 taxi voucher")
	taxi := c.AddExpense(ctx, req, pettycash.CategoryTravel, generic.MustMoney("200.00"), "V1", "Taxi to client site", day(-3))

	step("Requester submits a 50.00 courier voucher and a duplicate of it")
	courier := c.AddExpense(ctx, req, pettycash.CategoryCourier, generic.MustMoney("50.00"), "V2", "Contract courier", day(-2))
	duplicate := c.AddExpense(ctx, req, pettycash.CategoryCourier, generic.MustMoney("50.00"), "V2-DUP", "Contract courier", day(-2))

	step("Requester tries to approve their own voucher")
	c.Approve(ctx, req, taxi.Data.ID)

	app, err := login("app1")
	if err != nil {
		return err
	}
	app = app.WithFund(fundID)
	c.Header(ctx, app)

	step("Approver works the queue")
	if _, err := c.PendingExpenses(ctx, app); err != nil {
		return err
	}
	c.Approve(ctx, app, taxi.Data.ID)
	c.Approve(ctx, app, courier.Data.ID)
	c.Reject(ctx, app, duplicate.Data.ID, "duplicate")

	step("Approving the taxi voucher again is refused")
	c.Approve(ctx, app, taxi.Data.ID)

	step("Requester submits 700.00 of refreshments; the approver approves it")
	snacks := c.AddExpense(ctx, req, pettycash.CategoryRefreshments, generic.MustMoney("700.00"), "V3", "Team offsite", day(-1))
	if snacks.Success {
		c.Approve(ctx, app, snacks.Data.ID)
	}

	step("Accountant tops the fund up by 500.00")
	c.AddReimbursement(ctx, acc, generic.MustMoney("500.00"), "R1", "Monthly top-up", day(0))
	c.Header(ctx, acc)

	step("Ledger")
	if _, err := c.Ledger(ctx, acc, report.LedgerFilter{}); err != nil {
		return err
	}
	step("Reports")
	if _, err := c.CategoryReport(ctx, acc); err != nil {
		return err
	}
	if _, err := c.DailyReport(ctx, acc, day(-3), day(0)); err != nil {
		return err
	}
	if _, err := c.Reconcile(ctx, acc); err != nil {
		return err
	}

	aud, err := login("aud1")
	if err != nil {
		return err
	}
	step("Auditor reviews the trail")
	_, err = c.AuditTrail(ctx, aud, generic.AuditFilter{})
	return err
}
