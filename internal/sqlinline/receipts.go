package sqlinline

const QInsertReceipt = `--sql a07d3e96-48c1-4f25-9b60-e5d28a71f4c3
insert into receipts(id, donation_id, email, body, status, attempts, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::text, $3::text, 'pending', 0, now(), now())
returning id;
`

const QMarkReceiptIssued = `--sql d41f7b28-9e06-4c53-a7d2-b06c859e31fa
update receipts
set status = 'issued', attempts = attempts + 1, updated_at = now()
where id = $1::uuid;
`

const QMarkReceiptFailed = `--sql 38b5ec09-a174-4d8f-bc26-590fe7a3d812
update receipts
set status = 'failed', attempts = attempts + 1, updated_at = now()
where id = $1::uuid;
`
