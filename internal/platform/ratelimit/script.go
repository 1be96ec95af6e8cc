package ratelimit

import "github.com/redis/go-redis/v9"

// slidingWindow drops entries older than the window, counts what is left and, when the
// count is below the limit, records the request. It returns {allowed, remaining, retry_ms}
// where retry_ms is the time until the oldest entry leaves the window.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call("ZREMRANGEBYSCORE", key, 0, now - window)
local count = redis.call("ZCARD", key)

if count < limit then
	redis.call("ZADD", key, now, ARGV[4])
	redis.call("PEXPIRE", key, window)
	return {1, limit - count - 1, 0}
end

local retry = window
local oldest = redis.call("ZRANGE", key, 0, 0, "WITHSCORES")
if oldest[2] then
	retry = tonumber(oldest[2]) + window - now
end
return {0, 0, retry}
`)
