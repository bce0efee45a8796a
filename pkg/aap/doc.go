// Package aap defines the public types and interfaces of the Ansible
// Automation Platform orchestration client.
//
// The client talks to the AAP controller REST API: it creates or reuses
// projects, execution environments and job templates, launches jobs and
// waits for them to finish, and turns AAP error payloads into errors whose
// message can be shown to an end user.
//
// # Creating a client
//
//	client, err := aapclient.New(ctx, &aap.Config{
//		BaseURL: "https://aap.example.com",
//		Token:   token,
//	})
//
// # Creating resources
//
// Every Create call takes a deleteIfExist flag. When set, a resource with the
// same name (and organization, where applicable) is deleted right before the
// new one is created. The lookup and the create are not atomic.
//
//	project, err := client.Projects().Create(ctx, &aap.Project{
//		ProjectName:  "demo",
//		Organization: aap.Organization{ID: 1},
//		ScmURL:       "https://github.com/example/playbooks",
//	}, true)
//
// Project creation waits for the initial SCM sync. A sync that ends in
// failed, error or canceled returns ErrProjectCreationFailed.
//
// # Launching jobs
//
//	job, err := client.Jobs().Launch(ctx, &aap.LaunchJobTemplate{
//		Template: aap.JobTemplate{ID: template.ID},
//	})
//
// Launch blocks until the job is terminal and returns its complete event
// history. Any status other than successful yields ErrJobExecutionFailed.
//
// # Errors
//
// A 403 always yields ErrInsufficientPrivileges. Other HTTP errors yield a
// *RemoteValidationError built from the response body, or a
// *RequestFailureError when the body is unusable. Failures before a response
// is received are *TransportError.
package aap
