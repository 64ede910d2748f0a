package phonepe

const (
	payPath    = "/pg/v1/pay"
	statusPath = "/pg/v1/status"
	refundPath = "/pg/v1/refund"

	headerVerify     = "X-VERIFY"
	headerMerchantID = "X-MERCHANT-ID"
	headerAuth       = "Authorization"
)

// Gateway response codes.
const (
	codePaymentSuccess      = "PAYMENT_SUCCESS"
	codePaymentError        = "PAYMENT_ERROR"
	codePaymentPending      = "PAYMENT_PENDING"
	codePaymentDeclined     = "PAYMENT_DECLINED"
	codeTimedOut            = "TIMED_OUT"
	codeTransactionNotFound = "TRANSACTION_NOT_FOUND"
	codeInternalServerError = "INTERNAL_SERVER_ERROR"
)

type payRequest struct {
	MerchantID            string            `json:"merchantId"`
	MerchantTransactionID string            `json:"merchantTransactionId"`
	MerchantUserID        string            `json:"merchantUserId"`
	Amount                int64             `json:"amount"`
	RedirectURL           string            `json:"redirectUrl,omitempty"`
	RedirectMode          string            `json:"redirectMode,omitempty"`
	CallbackURL           string            `json:"callbackUrl,omitempty"`
	MobileNumber          string            `json:"mobileNumber,omitempty"`
	PaymentInstrument     paymentInstrument `json:"paymentInstrument"`
}

type paymentInstrument struct {
	Type      string `json:"type"`
	TargetApp string `json:"targetApp,omitempty"`
}

type refundRequest struct {
	MerchantID            string `json:"merchantId"`
	MerchantUserID        string `json:"merchantUserId"`
	OriginalTransactionID string `json:"originalTransactionId"`
	MerchantTransactionID string `json:"merchantTransactionId"`
	Amount                int64  `json:"amount"`
	CallbackURL           string `json:"callbackUrl,omitempty"`
}

type envelope struct {
	Request string `json:"request"`
}

type webhookEnvelope struct {
	Response string `json:"response"`
}

type apiResponse struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Data    responseData `json:"data"`
}

type responseData struct {
	MerchantID            string              `json:"merchantId"`
	MerchantTransactionID string              `json:"merchantTransactionId"`
	TransactionID         string              `json:"transactionId"`
	Amount                int64               `json:"amount"`
	State                 string              `json:"state"`
	ResponseCode          string              `json:"responseCode"`
	PaymentInstrument     *instrumentDetail   `json:"paymentInstrument,omitempty"`
	InstrumentResponse    *instrumentResponse `json:"instrumentResponse,omitempty"`
}

type instrumentDetail struct {
	Type              string `json:"type"`
	UTR               string `json:"utr"`
	VPA               string `json:"vpa"`
	UPITransactionID  string `json:"upiTransactionId"`
	AccountHolderName string `json:"accountHolderName"`
	CardType          string `json:"cardType"`
	BankID            string `json:"bankId"`
}

type instrumentResponse struct {
	Type         string        `json:"type"`
	RedirectInfo *redirectInfo `json:"redirectInfo,omitempty"`
	IntentURL    string        `json:"intentUrl,omitempty"`
	QRData       string        `json:"qrData,omitempty"`
}

type redirectInfo struct {
	URL    string `json:"url"`
	Method string `json:"method"`
}
