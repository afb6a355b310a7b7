package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
	"github.com/warp/pettycash/report"
)

// =============================================================================
// SHELL - Interactive menu driven by huh forms
// =============================================================================

// Shell collects input with huh prompts and hands it to the Console. The
// session lives here and is replaced, never mutated, as the user signs in
// and selects funds.
type Shell struct {
	console *Console
	session pettycash.Session
}

func NewShell(console *Console) *Shell {
	return &Shell{console: console}
}

type menuChoice int

const (
	menuExit menuChoice = iota
	menuCreateFund
	menuSelectFund
	menuAddExpense
	menuApprovals
	menuReimbursement
	menuLedger
	menuReports
	menuAuditTrail
	menuReconcile
	menuSwitchUser
)

// Run signs a user in and loops on the main menu until Exit or Ctrl+C.
func (sh *Shell) Run(ctx context.Context) error {
	if err := sh.login(ctx); err != nil {
		return quietAbort(err)
	}
	for {
		sh.console.Header(ctx, sh.session)

		choice := menuExit
		err := huh.NewSelect[menuChoice]().
			Title("Choose an option").
			Options(sh.menuOptions()...).
			Value(&choice).
			Run()
		if err != nil {
			return quietAbort(err)
		}
		if choice == menuExit {
			return nil
		}
		if err := sh.dispatch(ctx, choice); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			return err
		}
	}
}

func (sh *Shell) menuOptions() []huh.Option[menuChoice] {
	role := sh.session.Role
	label := func(text string, op pettycash.Operation) string {
		if role.Can(op) {
			return text
		}
		return text + " 🔒"
	}
	return []huh.Option[menuChoice]{
		huh.NewOption("Create Fund", menuCreateFund),
		huh.NewOption("Select Fund", menuSelectFund),
		huh.NewOption(label("Add Expense Voucher (Requester)", pettycash.OpSubmitExpense), menuAddExpense),
		huh.NewOption(label("Approve/Reject Expenses (Approver)", pettycash.OpApproveExpense), menuApprovals),
		huh.NewOption(label("Add Reimbursement / Top-up (Accountant)", pettycash.OpAddReimbursement), menuReimbursement),
		huh.NewOption("View Fund Balance & Ledger", menuLedger),
		huh.NewOption("Reports", menuReports),
		huh.NewOption(label("Audit Trail (Auditor)", pettycash.OpViewAuditTrail), menuAuditTrail),
		huh.NewOption("Verify Balance", menuReconcile),
		huh.NewOption("Switch User", menuSwitchUser),
		huh.NewOption("Exit", menuExit),
	}
}

// dispatch runs one menu action. Only prompt aborts and infrastructure
// errors are returned; ledger refusals are printed by the Console.
func (sh *Shell) dispatch(ctx context.Context, choice menuChoice) error {
	switch choice {
	case menuCreateFund:
		return sh.createFund(ctx)
	case menuSelectFund:
		return sh.selectFund(ctx)
	case menuAddExpense:
		return sh.addExpense(ctx)
	case menuApprovals:
		return sh.approvals(ctx)
	case menuReimbursement:
		return sh.addReimbursement(ctx)
	case menuLedger:
		return sh.ledger(ctx)
	case menuReports:
		return sh.reports(ctx)
	case menuAuditTrail:
		return sh.auditTrail(ctx)
	case menuReconcile:
		_, err := sh.console.Reconcile(ctx, sh.session)
		return ignoreClient(err)
	case menuSwitchUser:
		return sh.login(ctx)
	}
	return nil
}

// =============================================================================
// ACTIONS
// =============================================================================

func (sh *Shell) login(ctx context.Context) error {
	sh.console.println(RenderTitle("Login (Demo Users)"))
	sh.console.println(mutedStyle.Render("Demo users: req1 / app1 / acc1 / aud1 (password: pass)"))
	for {
		var username, password string
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Username").Value(&username).Validate(required("Username")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(required("Password")),
		)).Run()
		if err != nil {
			return err
		}
		s, err := sh.console.Login(ctx, username, password)
		if err == nil {
			sh.session = s
			return nil
		}
		if !generic.IsClientError(err) {
			return err
		}
	}
}

func (sh *Shell) createFund(ctx context.Context) error {
	var name, opening string
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Fund name").Value(&name).Validate(required("Fund name")),
		huh.NewInput().Title("Opening balance").Value(&opening).Validate(amountAtLeastZero),
	)).Run()
	if err != nil {
		return err
	}
	sh.session, _ = sh.console.CreateFund(ctx, sh.session, name, mustAmount(opening))
	return nil
}

func (sh *Shell) selectFund(ctx context.Context) error {
	funds, err := sh.console.ListFunds(ctx, sh.session)
	if err != nil || len(funds) == 0 {
		return ignoreClient(err)
	}
	options := make([]huh.Option[generic.ID], 0, len(funds))
	for _, f := range funds {
		options = append(options, huh.NewOption(f.String(), f.ID))
	}
	var id generic.ID
	if err := huh.NewSelect[generic.ID]().Title("Select fund").Options(options...).Value(&id).Run(); err != nil {
		return err
	}
	sh.session, err = sh.console.SelectFund(ctx, sh.session, id)
	return ignoreClient(err)
}

func (sh *Shell) addExpense(ctx context.Context) error {
	if err := sh.console.gate(sh.session, pettycash.OpSubmitExpense, true); err != nil {
		sh.console.println(RenderError(err))
		return nil
	}
	categories := make([]huh.Option[pettycash.Category], 0, len(pettycash.Categories))
	for _, c := range pettycash.Categories {
		categories = append(categories, huh.NewOption(string(c), c))
	}

	var (
		category                           = pettycash.CategoryStationery
		amount, voucher, narration, dateIn string
	)
	dateIn = generic.FormatDate(sh.console.now())
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[pettycash.Category]().Title("Expense category").Options(categories...).Value(&category),
		huh.NewInput().Title("Amount").Value(&amount).Validate(amountAtLeastZero),
		huh.NewInput().Title("Voucher number").Value(&voucher).Validate(required("Voucher number")),
		huh.NewInput().Title("Narration").Value(&narration).Validate(required("Narration")),
		huh.NewInput().Title("Date (e.g., 2026-01-21)").Value(&dateIn).Validate(validDate),
	)).Run()
	if err != nil {
		return err
	}
	sh.console.AddExpense(ctx, sh.session, category, mustAmount(amount), voucher, narration, mustDate(dateIn))
	return nil
}

func (sh *Shell) approvals(ctx context.Context) error {
	for {
		pending, err := sh.console.PendingExpenses(ctx, sh.session)
		if err != nil || len(pending) == 0 {
			return ignoreClient(err)
		}

		options := make([]huh.Option[int], 0, len(pending)+1)
		for i, t := range pending {
			options = append(options, huh.NewOption(fmt.Sprintf("%d) %s", i+1, t), i))
		}
		options = append(options, huh.NewOption("Back", -1))

		idx := -1
		action := "A"
		err = huh.NewForm(huh.NewGroup(
			huh.NewSelect[int]().Title("Voucher").Options(options...).Value(&idx),
			huh.NewSelect[string]().Title("Action").Options(
				huh.NewOption("Approve", "A"),
				huh.NewOption("Reject", "R"),
			).Value(&action),
		)).Run()
		if err != nil {
			return err
		}
		if idx < 0 {
			return nil
		}

		selected := pending[idx]
		if action == "A" {
			sh.console.Approve(ctx, sh.session, selected.ID)
			continue
		}
		var reason string
		err = huh.NewInput().Title("Reason for rejection").Value(&reason).Validate(required("Reason")).Run()
		if err != nil {
			return err
		}
		sh.console.Reject(ctx, sh.session, selected.ID, reason)
	}
}

func (sh *Shell) addReimbursement(ctx context.Context) error {
	if err := sh.console.gate(sh.session, pettycash.OpAddReimbursement, true); err != nil {
		sh.console.println(RenderError(err))
		return nil
	}
	var amount, reference, narration string
	dateIn := generic.FormatDate(sh.console.now())
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("Top-up amount").Value(&amount).Validate(amountAtLeastZero),
		huh.NewInput().Title("Reference number").Value(&reference).Validate(required("Reference number")),
		huh.NewInput().Title("Narration").Value(&narration).Validate(required("Narration")),
		huh.NewInput().Title("Date (e.g., 2026-01-21)").Value(&dateIn).Validate(validDate),
	)).Run()
	if err != nil {
		return err
	}
	sh.console.AddReimbursement(ctx, sh.session, mustAmount(amount), reference, narration, mustDate(dateIn))
	return nil
}

func (sh *Shell) ledger(ctx context.Context) error {
	if err := sh.console.gate(sh.session, pettycash.OpViewLedger, true); err != nil {
		sh.console.println(RenderError(err))
		return nil
	}
	mode := "none"
	if err := huh.NewSelect[string]().Title("Filter").Options(
		huh.NewOption("No filter", "none"),
		huh.NewOption("By Status", "status"),
		huh.NewOption("By Date Range", "range"),
	).Value(&mode).Run(); err != nil {
		return err
	}

	var filter report.LedgerFilter
	switch mode {
	case "status":
		options := make([]huh.Option[pettycash.Status], 0, len(pettycash.Statuses))
		for _, st := range pettycash.Statuses {
			options = append(options, huh.NewOption(string(st), st))
		}
		if err := huh.NewSelect[pettycash.Status]().Title("Status").Options(options...).Value(&filter.Status).Run(); err != nil {
			return err
		}
	case "range":
		from, to, err := promptRange()
		if err != nil {
			return err
		}
		filter.From, filter.To = from, to
	}
	_, err := sh.console.Ledger(ctx, sh.session, filter)
	return ignoreClient(err)
}

func (sh *Shell) reports(ctx context.Context) error {
	if err := sh.console.gate(sh.session, pettycash.OpViewReports, true); err != nil {
		sh.console.println(RenderError(err))
		return nil
	}
	choice := 0
	if err := huh.NewSelect[int]().Title("Reports").Options(
		huh.NewOption("Transactions by Date Range", 1),
		huh.NewOption("Daily Summary (Date totals)", 2),
		huh.NewOption("Category-wise Totals (Approved expenses)", 3),
		huh.NewOption("Pending Approvals", 4),
		huh.NewOption("Back", 0),
	).Value(&choice).Run(); err != nil {
		return err
	}

	var err error
	switch choice {
	case 1, 2:
		from, to, perr := promptRange()
		if perr != nil {
			return perr
		}
		if choice == 1 {
			_, err = sh.console.DateRangeReport(ctx, sh.session, from, to)
		} else {
			_, err = sh.console.DailyReport(ctx, sh.session, from, to)
		}
	case 3:
		_, err = sh.console.CategoryReport(ctx, sh.session)
	case 4:
		_, err = sh.console.PendingReport(ctx, sh.session)
	}
	return ignoreClient(err)
}

func (sh *Shell) auditTrail(ctx context.Context) error {
	if err := sh.console.gate(sh.session, pettycash.OpViewAuditTrail, false); err != nil {
		sh.console.println(RenderError(err))
		return nil
	}
	mode := "none"
	if err := huh.NewSelect[string]().Title("Filter").Options(
		huh.NewOption("No filter", "none"),
		huh.NewOption("By Actor", "actor"),
		huh.NewOption("By Date Range", "range"),
	).Value(&mode).Run(); err != nil {
		return err
	}

	var filter generic.AuditFilter
	switch mode {
	case "actor":
		if err := huh.NewInput().Title("Actor username").Value(&filter.Actor).Validate(required("Actor")).Run(); err != nil {
			return err
		}
	case "range":
		from, to, err := promptRange()
		if err != nil {
			return err
		}
		filter.Range = generic.DateRange{From: from, To: to}
	}
	_, err := sh.console.AuditTrail(ctx, sh.session, filter)
	return ignoreClient(err)
}

// =============================================================================
// PROMPT HELPERS
// =============================================================================

func promptRange() (from, to time.Time, err error) {
	var fromIn, toIn string
	err = huh.NewForm(huh.NewGroup(
		huh.NewInput().Title("From date").Value(&fromIn).Validate(validDate),
		huh.NewInput().Title("To date").Value(&toIn).Validate(validDate),
	)).Run()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return mustDate(fromIn), mustDate(toIn), nil
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

func amountAtLeastZero(s string) error {
	d, err := generic.ParseMoney(s)
	if err != nil {
		return errors.New("enter a number, e.g. 250.00")
	}
	if d.IsNegative() {
		return errors.New("amount cannot be negative")
	}
	return nil
}

func validDate(s string) error {
	if _, err := generic.ParseDate(strings.TrimSpace(s)); err != nil {
		return errors.New("enter a date as YYYY-MM-DD")
	}
	return nil
}

// mustAmount and mustDate parse input that already passed validation.
func mustAmount(s string) decimal.Decimal {
	d, _ := generic.ParseMoney(s)
	return d
}

func mustDate(s string) time.Time {
	t, _ := generic.ParseDate(strings.TrimSpace(s))
	return t
}

// ignoreClient drops errors the Console has already shown to the user.
func ignoreClient(err error) error {
	if err == nil || generic.IsClientError(err) {
		return nil
	}
	return err
}

func quietAbort(err error) error {
	if errors.Is(err, huh.ErrUserAborted) {
		return nil
	}
	return err
}
