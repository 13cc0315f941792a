// Package iemap is a client for the IEMAP materials-science data platform
// (https://iemap.enea.it).
//
// # Overview
//
// A Client owns one Session and two handlers that share it:
//
//   - ProjectHandler: list projects, create a project, attach a file
//   - StatsHandler: platform-wide statistics (no login needed)
//
// Every handler call is a single HTTP request. There is no retry, backoff or
// offline queue; failures are returned to the caller.
//
// # Authentication
//
// Client.Authenticate posts the credentials to auth/jwt/login and stores the
// returned bearer token in the Session. From then on every request carries
// "Authorization: Bearer <token>". Before login no Authorization header is
// sent.
//
// # Errors
//
//   - *models.ValidationError: bad input detected locally, all fields at once
//   - *UnsupportedFileTypeError: upload rejected locally by extension
//   - *TransportError: non-2xx status or connection failure
//   - *AuthenticationError: a TransportError from the login exchange
//
// # Endpoints
//
//   - POST auth/jwt/login
//   - GET  api/v1/project/list/?page_size&page_number
//   - POST api/v1/project/add
//   - POST api/v1/project/add/file/?project_id&file_name
//   - GET  api/v1/stats
//
// # Example
//
//	client, err := iemap.NewClient(iemap.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	if err := client.Authenticate(ctx, user, pass); err != nil {
//		return err
//	}
//	page, err := client.Projects.List(ctx, 10, 1)
package iemap
