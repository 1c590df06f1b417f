package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrTokenRequired ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid  ErrCode = "TOKEN_INVALID"
	ErrTokenExpired  ErrCode = "TOKEN_EXPIRED"
	ErrTokenRevoked  ErrCode = "TOKEN_REVOKED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Catalog ───────────────────────────────────────────────────────
	ErrSurveyNotFound  ErrCode = "SURVEY_NOT_FOUND"
	ErrSectionNotFound ErrCode = "SECTION_NOT_FOUND"
	ErrDuplicateOrder  ErrCode = "DUPLICATE_ORDER"

	// ─── Seeding ───────────────────────────────────────────────────────
	ErrTemplateNotFound  ErrCode = "TEMPLATE_NOT_FOUND"
	ErrInvalidTemplate   ErrCode = "INVALID_TEMPLATE"
	ErrMalformedTemplate ErrCode = "MALFORMED_TEMPLATE"
	ErrSeedInProgress    ErrCode = "SEED_IN_PROGRESS"
	ErrRunNotFound       ErrCode = "SEED_RUN_NOT_FOUND"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrTokenRequired:
		return "Token autentikasi diperlukan."
	case ErrTokenInvalid:
		return "Token autentikasi tidak valid."
	case ErrTokenExpired:
		return "Token autentikasi telah kedaluwarsa."
	case ErrTokenRevoked:
		return "Token autentikasi telah dicabut."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Anda tidak memiliki izin untuk mengakses sumber daya ini."
	case ErrPermissionDenied:
		return "Izin ditolak."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validasi gagal. Silakan periksa masukan Anda."
	case ErrInvalidID:
		return "Format ID tidak valid."
	case ErrInvalidPayload:
		return "Payload permintaan tidak valid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Sumber daya tidak ditemukan."
	case ErrConflict:
		return "Sumber daya sudah ada."

	// ─── Catalog ───────────────────────────────────────────────────────
	case ErrSurveyNotFound:
		return "Survei tidak ditemukan."
	case ErrSectionNotFound:
		return "Bagian survei tidak ditemukan."
	case ErrDuplicateOrder:
		return "Urutan tersebut sudah dipakai oleh entri lain."

	// ─── Seeding ───────────────────────────────────────────────────────
	case ErrTemplateNotFound:
		return "Templat survei tidak ditemukan."
	case ErrInvalidTemplate:
		return "Templat survei melanggar aturan validasi."
	case ErrMalformedTemplate:
		return "Struktur templat survei tidak lengkap."
	case ErrSeedInProgress:
		return "Proses seeding lain sedang berjalan. Silakan coba lagi nanti."
	case ErrRunNotFound:
		return "Riwayat proses seeding tidak ditemukan."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Terlalu banyak permintaan. Silakan coba lagi nanti."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Terjadi kesalahan server internal."
	default:
		return "Terjadi kesalahan yang tidak terduga."
	}
}
