package shared

// ReferralCookieName stores the referral code captured from landing traffic.
// The attribution middleware writes it; registration consumes it when the
// signup carries no explicit code.
const ReferralCookieName = "referral_code"
