package handler

const (
	notFoundPage       = `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"><title>Not Found</title></head><body>Method Not Found</body></html>`
	notImplementedPage = `<!DOCTYPE html><html lang="en"><head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"><title>Not Implemented</title></head><body>Method Not Implemented</body></html>`

	invalidRequestBody = "invalid request"
	internalErrorBody  = "internal server error"
)

// DateLayout renders the Date header, always in UTC.
const DateLayout = "Mon, 02 Jan 2006 15:04:05 UTC"
