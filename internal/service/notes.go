package service

import "fmt"

const (
	noteAuthFailed = "Signiflow: Failed to authenticate. Please check username and password in the contract settings."

	noteConfigMissing = "Signiflow: Either Workflow ID or PDF template paths must be configured in the contract settings."

	noteTokenRetry = "Signiflow: Token invalid or expired. Will retry with new login on next attempt."
)

func noteSent(docID, workflowID, email string) string {
	return fmt.Sprintf(
		"Signiflow workflow sent successfully. Doc ID: %s, Workflow ID: %s. Email should be sent to: %s",
		docID, workflowID, email)
}

// noteInvalidDocument is operator guidance for the remote "valid document"
// rejection: the usual causes live in the SigniFlow dashboard, not here.
func noteInvalidDocument(workflowID string) string {
	return fmt.Sprintf(`Signiflow: Document error for Workflow ID %[1]s.

Please verify in the Signiflow dashboard:
1. Workflow ID %[1]s exists and is accessible
2. The workflow has PDF documents properly attached (not just uploaded, but linked to the workflow template)
3. The workflow is Published/Active (not draft or archived)
4. The workflow is configured for API use
5. Your API user account has permission to access this workflow
6. The documents in the workflow are PDF format and not corrupted

If all above are correct, contact Signiflow support with:
- Workflow ID: %[1]s
- Error: "Failed - Please provide a valid document"
- API Endpoint: FullWorkflow
- Request includes WorkflowIDField, TagValuesField, and UseAutoTagsField`, workflowID)
}
