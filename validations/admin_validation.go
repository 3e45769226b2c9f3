package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainInbox "github.com/brokerdesk/bd-wap/inbox/domain"
	pkgError "github.com/brokerdesk/bd-wap/pkg/error"
	domainTenancy "github.com/brokerdesk/bd-wap/tenancy/domain"
)

func ValidateCreateTenant(ctx context.Context, request domainTenancy.CreateTenantRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&request.Plan, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSetPlan(ctx context.Context, request domainTenancy.SetPlanRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Plan, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateSetFlag(ctx context.Context, request domainTenancy.SetFlagRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Key, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateLogin(ctx context.Context, request domainInbox.LoginRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Username, validation.Required),
		validation.Field(&request.Password, validation.Required),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

func ValidateAgentReply(ctx context.Context, request domainInbox.AgentReplyRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Text, validation.Required, validation.Length(1, 4096)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
