package app

import (
	"context"
	"sync"
	"time"

	"applygate/internal/common"
	"applygate/internal/domain/application"
	"applygate/internal/domain/message"
	"applygate/internal/domain/opportunity"
	"applygate/internal/domain/user"
	"applygate/internal/gateway/paystack"
)

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[common.UUID]*application.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[common.UUID]*application.Application)}
}

func (r *fakeApplicationRepo) put(app application.Application) *application.Application {
	r.mu.Lock()
	defer r.mu.Unlock()
	if app.ID == "" {
		app.ID = common.NewUUID()
	}
	stored := app
	r.apps[app.ID] = &stored
	return cloneApplication(&stored)
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		if existing.UserID == app.UserID && existing.OpportunityID == app.OpportunityID {
			return nil, common.NewError(common.CodeConflict, "already applied", nil)
		}
	}
	app.ID = common.NewUUID()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	app.UpdatedAt = app.CreatedAt
	stored := app
	r.apps[app.ID] = &stored
	return cloneApplication(&stored), nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return cloneApplication(app), nil
}

func (r *fakeApplicationRepo) FindByUserAndOpportunity(ctx context.Context, userID, opportunityID common.UUID) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.UserID == userID && app.OpportunityID == opportunityID {
			return cloneApplication(app), nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) FindByTransferCode(ctx context.Context, transferCode string) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		if app.RefundTransferCode != "" && app.RefundTransferCode == transferCode {
			return cloneApplication(app), nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "application not found", nil)
}

func (r *fakeApplicationRepo) ListByUser(ctx context.Context, userID common.UUID) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []application.Application
	for _, app := range r.apps {
		if app.UserID == userID {
			out = append(out, *cloneApplication(app))
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []application.Application
	for _, app := range r.apps {
		if app.Status == application.StatusPendingPayment && app.CreatedAt.Before(cutoff) {
			out = append(out, *cloneApplication(app))
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) ConfirmPayment(ctx context.Context, id common.UUID, transactionID string, amount float64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app == nil {
		return false, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if app.Status != application.StatusPendingPayment {
		return false, nil
	}
	app.Status = application.StatusSubmitted
	app.TransactionID = transactionID
	app.AmountPaid = &amount
	app.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (r *fakeApplicationRepo) ClaimRefund(ctx context.Context, id common.UUID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app == nil {
		return false, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if app.Status == application.StatusPendingPayment || app.RefundedAt != nil {
		return false, nil
	}
	stamped := at
	app.RefundedAt = &stamped
	return true, nil
}

func (r *fakeApplicationRepo) ReleaseRefundClaim(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app == nil {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	app.RefundedAt = nil
	return nil
}

func (r *fakeApplicationRepo) SetRefundResult(ctx context.Context, id common.UUID, amount float64, transferCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app == nil {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	app.RefundAmount = &amount
	app.RefundTransferCode = transferCode
	return nil
}

func (r *fakeApplicationRepo) ClearRefundResult(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app == nil {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	app.RefundAmount = nil
	app.RefundTransferCode = ""
	return nil
}

func (r *fakeApplicationRepo) UpdateStatus(ctx context.Context, id common.UUID, status application.Status) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app := r.apps[id]
	if app == nil {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	app.Status = status
	app.UpdatedAt = time.Now().UTC()
	return cloneApplication(app), nil
}

func (r *fakeApplicationRepo) Delete(ctx context.Context, id common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.apps[id] == nil {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	delete(r.apps, id)
	return nil
}

func cloneApplication(app *application.Application) *application.Application {
	copied := *app
	if app.AmountPaid != nil {
		amount := *app.AmountPaid
		copied.AmountPaid = &amount
	}
	if app.RefundedAt != nil {
		at := *app.RefundedAt
		copied.RefundedAt = &at
	}
	if app.RefundAmount != nil {
		amount := *app.RefundAmount
		copied.RefundAmount = &amount
	}
	return &copied
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[common.UUID]*user.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[common.UUID]*user.User)}
}

func (r *fakeUserRepo) put(u user.User) *user.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = common.NewUUID()
	}
	stored := u
	r.users[u.ID] = &stored
	copied := stored
	return &copied
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id common.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	account := r.users[id]
	if account == nil {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	copied := *account
	return &copied, nil
}

func (r *fakeUserRepo) SaveAuthorizationCode(ctx context.Context, id common.UUID, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account := r.users[id]
	if account == nil {
		return common.NewError(common.CodeNotFound, "user not found", nil)
	}
	account.AuthorizationCode = code
	return nil
}

type fakeOpportunityRepo struct {
	mu            sync.Mutex
	opportunities map[common.UUID]*opportunity.Opportunity
}

func newFakeOpportunityRepo() *fakeOpportunityRepo {
	return &fakeOpportunityRepo{opportunities: make(map[common.UUID]*opportunity.Opportunity)}
}

func (r *fakeOpportunityRepo) put(opp opportunity.Opportunity) *opportunity.Opportunity {
	r.mu.Lock()
	defer r.mu.Unlock()
	if opp.ID == "" {
		opp.ID = common.NewUUID()
	}
	stored := opp
	r.opportunities[opp.ID] = &stored
	copied := stored
	return &copied
}

func (r *fakeOpportunityRepo) GetByID(ctx context.Context, id common.UUID) (*opportunity.Opportunity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opp := r.opportunities[id]
	if opp == nil {
		return nil, common.NewError(common.CodeNotFound, "opportunity not found", nil)
	}
	copied := *opp
	return &copied, nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []message.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, msg message.Message) (*message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = common.NewUUID()
	r.messages = append(r.messages, msg)
	copied := msg
	return &copied, nil
}

func (r *fakeMessageRepo) CountByApplicationAndType(ctx context.Context, applicationID common.UUID, msgType message.Type) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, msg := range r.messages {
		if msg.ApplicationID == applicationID && msg.Type == msgType {
			count++
		}
	}
	return count, nil
}

func (r *fakeMessageRepo) ListByUser(ctx context.Context, userID common.UUID, limit, offset int) ([]message.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []message.Message
	for _, msg := range r.messages {
		if msg.UserID == userID {
			out = append(out, msg)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkRead(ctx context.Context, id, userID common.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, msg := range r.messages {
		if msg.ID == id && msg.UserID == userID {
			r.messages[i].Read = true
			return nil
		}
	}
	return common.NewError(common.CodeNotFound, "message not found", nil)
}

type fakeGateway struct {
	mu sync.Mutex

	initResult *paystack.InitializeResult
	initErr    error
	initCalls  int

	momoResult *paystack.ChargeResult
	momoErr    error
	momoPhone  string

	authResult *paystack.ChargeResult
	authErr    error

	verifyResult *paystack.VerifyResult
	verifyErr    error
	verifyCalls  int

	refundResult *paystack.RefundResult
	refundErr    error
	refundCalls  int
	refundTxID   string
	refundAmount float64

	recipientCode string
	recipientErr  error

	transferResult *paystack.TransferResult
	transferErr    error
}

func (g *fakeGateway) InitializePayment(ctx context.Context, reference string, amount float64, customer paystack.Customer) (*paystack.InitializeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.initCalls++
	if g.initErr != nil {
		return nil, g.initErr
	}
	if g.initResult != nil {
		return g.initResult, nil
	}
	return &paystack.InitializeResult{AuthorizationURL: "https://checkout.example/" + reference, Reference: reference}, nil
}

func (g *fakeGateway) ChargeMobileMoney(ctx context.Context, reference string, amount float64, phone, email string) (*paystack.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.momoPhone = phone
	if g.momoErr != nil {
		return nil, g.momoErr
	}
	if g.momoResult != nil {
		return g.momoResult, nil
	}
	return &paystack.ChargeResult{Status: "pay_offline", Reference: reference, DisplayText: "approve on your phone"}, nil
}

func (g *fakeGateway) ChargeAuthorization(ctx context.Context, email string, amount float64, authorizationCode, reference string) (*paystack.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.authErr != nil {
		return nil, g.authErr
	}
	if g.authResult != nil {
		return g.authResult, nil
	}
	return &paystack.ChargeResult{ID: 1, Status: "success", Reference: reference, AmountMinor: int64(amount * 100)}, nil
}

func (g *fakeGateway) Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.verifyCalls++
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}
	if g.verifyResult != nil {
		return g.verifyResult, nil
	}
	return &paystack.VerifyResult{Verified: false}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, transactionID string, amount float64, reason string) (*paystack.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.refundCalls++
	g.refundTxID = transactionID
	g.refundAmount = amount
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	if g.refundResult != nil {
		return g.refundResult, nil
	}
	return &paystack.RefundResult{ID: 9, Status: "processed", AmountMinor: int64(amount * 100)}, nil
}

func (g *fakeGateway) CreateRecipient(ctx context.Context, name, phone string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.recipientErr != nil {
		return "", g.recipientErr
	}
	if g.recipientCode != "" {
		return g.recipientCode, nil
	}
	return "RCP_test", nil
}

func (g *fakeGateway) InitiateTransfer(ctx context.Context, amount float64, recipientCode, reason, reference string) (*paystack.TransferResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	if g.transferResult != nil {
		return g.transferResult, nil
	}
	return &paystack.TransferResult{TransferCode: "TRF_test", Status: "pending", Reference: reference}, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	sendErr error
	sent    []common.UUID
}

func (n *fakeNotifier) SendPaymentReminder(ctx context.Context, to user.User, opp opportunity.Opportunity, app application.Application) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, app.ID)
	return nil
}

func (n *fakeNotifier) sentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
