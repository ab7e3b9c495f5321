package store

// Bucket names mirror the logical persisted tables of §6. Each is a
// top-level bbolt bucket; tables with a per-delegate or per-epoch axis
// (request_block_tips[32], rewards[epoch], global_rewards[epoch]) are one
// bucket keyed by delegate index or epoch number rather than 32/N distinct
// buckets, the way prysm's kv store keys a single bucket by slot instead of
// opening one bucket per slot (beacon-chain/db/kv).
var (
	bucketAccounts             = []byte("accounts")
	bucketRequestBlocks        = []byte("request_blocks")        // key: block hash
	bucketRequestBlockTips     = []byte("request_block_tips")    // key: delegate index (1 byte)
	bucketMicroBlocks          = []byte("micro_blocks")          // key: block hash
	bucketMicroBlockTip        = []byte("micro_block_tip")       // single key
	bucketEpochBlocks          = []byte("epoch_blocks")          // key: block hash
	bucketEpochTip             = []byte("epoch_tip")             // single key
	bucketReceives             = []byte("receives")              // key: destination address || source request hash
	bucketStaking              = []byte("staking")               // key: account address
	bucketThawing              = []byte("thawing")               // key: account || expiration_epoch(BE) || target
	bucketLiabilities          = []byte("liabilities")           // key: liability hash
	bucketSecondaryLiabilities = []byte("secondary_liabilities") // key: liability hash
	bucketVotingPower          = []byte("voting_power")          // key: account address
	bucketVotingPowerFallback  = []byte("voting_power_fallback") // key: account address
	bucketCandidacy            = []byte("candidacy")             // key: account address
	bucketRepresentatives      = []byte("representatives")       // key: account address
	bucketRewards              = []byte("rewards")               // key: epoch(BE 4) || representative address
	bucketGlobalRewards        = []byte("global_rewards")        // key: epoch(BE 4)
	bucketTokenAccounts        = []byte("token_accounts")        // key: token hash
	bucketControllers          = []byte("controllers")           // key: token hash || account address

	tipSetKey = []byte("tip")
)

// Table name constants for the raw (untyped) accessors — PutRaw/GetRaw/
// DeleteRaw — used by packages (requestblock, staking) that haven't grown a
// typed wrapper for a given §6 table yet.
const (
	TableReceives        = "receives"
	TableCandidacy       = "candidacy"
	TableRepresentatives = "representatives"
	TableTokenAccounts   = "token_accounts"
	TableControllers     = "controllers"
)

var allBuckets = [][]byte{
	bucketAccounts,
	bucketRequestBlocks,
	bucketRequestBlockTips,
	bucketMicroBlocks,
	bucketMicroBlockTip,
	bucketEpochBlocks,
	bucketEpochTip,
	bucketReceives,
	bucketStaking,
	bucketThawing,
	bucketLiabilities,
	bucketSecondaryLiabilities,
	bucketVotingPower,
	bucketVotingPowerFallback,
	bucketCandidacy,
	bucketRepresentatives,
	bucketRewards,
	bucketGlobalRewards,
	bucketTokenAccounts,
	bucketControllers,
}
