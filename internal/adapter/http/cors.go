package httpadapter

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const corsAllowMethods = "GET,POST,DELETE,OPTIONS"
const corsAllowHeaders = "Content-Type,Authorization"

func applyCORSHeaders(ctx *app.RequestContext) {
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
	ctx.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	ctx.Response.Header.Set("Access-Control-Max-Age", "600")
}

func corsMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		applyCORSHeaders(ctx)
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}

// Catalog files are edited while the server runs; clients must not cache them.
func applyNoStoreHeaders(ctx *app.RequestContext) {
	ctx.Response.Header.Set("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	ctx.Response.Header.Set("Pragma", "no-cache")
	ctx.Response.Header.Set("Expires", "0")
}

func noStoreMiddleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		applyNoStoreHeaders(ctx)
		ctx.Next(c)
	}
}
