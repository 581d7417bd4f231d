package apperr

// Code is a stable machine-readable failure identifier returned to clients.
type Code string

const (
	CodeBidTooLow          Code = "BID_TOO_LOW"
	CodePlayerAlreadyTaken Code = "PLAYER_ALREADY_TAKEN"
	CodeInvalidBid         Code = "INVALID_BID"
	CodeInsufficientCap    Code = "INSUFFICIENT_CAP"
	CodeRosterLimit        Code = "ROSTER_LIMIT"
	CodeInternal           Code = "INTERNAL_ERROR"

	CodePlayerNotInRoster Code = "PLAYER_NOT_IN_ROSTER"

	CodeTradeInvalid         Code = "TRADE_INVALID"
	CodeTradeNotFound        Code = "TRADE_NOT_FOUND"
	CodeProposerCannotAccept Code = "PROPOSER_CANNOT_ACCEPT"
	CodeAlreadyAccepted      Code = "ALREADY_ACCEPTED"
	CodeTradeFailed          Code = "TRADE_FAILED"
	CodeTradeNotPending      Code = "TRADE_NOT_PENDING"
	CodeNotAuthorized        Code = "NOT_AUTHORIZED"

	CodeInvalidRequest Code = "INVALID_REQUEST"

	// CodeConflict is returned when a serializable commit kept losing to
	// concurrent writers. The whole operation is safe to retry.
	CodeConflict Code = "CONFLICT"
)

// Kind groups codes by how a caller should react to them.
type Kind int

const (
	KindValidation Kind = iota
	KindBusiness
	KindConflict
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindBusiness:
		return "business"
	case KindConflict:
		return "conflict"
	default:
		return "fatal"
	}
}

// Kind classifies the code.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidBid, CodeTradeInvalid, CodeInvalidRequest:
		return KindValidation
	case CodeBidTooLow, CodePlayerAlreadyTaken, CodeInsufficientCap, CodeRosterLimit,
		CodePlayerNotInRoster, CodeTradeNotFound, CodeProposerCannotAccept, CodeAlreadyAccepted,
		CodeTradeNotPending, CodeNotAuthorized:
		return KindBusiness
	case CodeConflict:
		return KindConflict
	default:
		return KindFatal
	}
}

// Closed result sets per operation. Anything outside the set is reported as
// the operation's fallback code.
var (
	PlaceBidCodes       = CodeSet{CodeBidTooLow, CodePlayerAlreadyTaken, CodeInvalidBid, CodeInsufficientCap, CodeRosterLimit, CodeConflict, CodeInternal}
	ReleasePlayerCodes  = CodeSet{CodePlayerNotInRoster, CodeConflict, CodeInternal}
	AssignPlayerCodes   = CodeSet{CodePlayerAlreadyTaken, CodeInsufficientCap, CodeRosterLimit, CodeNotAuthorized, CodeInvalidRequest, CodeConflict, CodeInternal}
	ProposeTradeCodes   = CodeSet{CodeTradeInvalid, CodeConflict, CodeInternal}
	AcceptTradeCodes    = CodeSet{CodeTradeNotFound, CodeTradeNotPending, CodeProposerCannotAccept, CodeNotAuthorized, CodeAlreadyAccepted, CodeRosterLimit, CodeConflict, CodeTradeFailed}
	RejectTradeCodes    = CodeSet{CodeTradeNotFound, CodeTradeNotPending, CodeNotAuthorized, CodeConflict, CodeInternal}
	MarketReadCodes     = CodeSet{CodeNotAuthorized, CodeInternal}
	TradeReadCodes      = CodeSet{CodeTradeNotFound, CodeInternal}
	RosterReadCodes     = CodeSet{CodePlayerNotInRoster, CodeNotAuthorized, CodeInternal}
)

// CodeSet is the closed list of codes an operation may return. The last
// entry is the fallback.
type CodeSet []Code

// Contains reports whether c is a member of the set.
func (s CodeSet) Contains(c Code) bool {
	for _, x := range s {
		if x == c {
			return true
		}
	}
	return false
}

// Fallback returns the code unknown failures collapse into.
func (s CodeSet) Fallback() Code {
	if len(s) == 0 {
		return CodeInternal
	}
	return s[len(s)-1]
}
