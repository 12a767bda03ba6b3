package wsrouter

import "context"

type ctxKey string

const (
	actionTypeKey ctxKey = "action_type"
)

func withActionType(ctx context.Context, actionType string) context.Context {
	return context.WithValue(ctx, actionTypeKey, actionType)
}

func GetActionTypeFromCtx(ctx context.Context) string {
	actionType, _ := ctx.Value(actionTypeKey).(string)
	return actionType
}
