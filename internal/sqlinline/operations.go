package sqlinline

const QInsertOperation = `--sql 7c3e51a9-04bd-4f62-8a17-d29b6e84c053
insert into privileged_operations(id, actor_id, op_type, chain_id, contract_version, token_id, address, amount, new_uri, status, tx_hash, detail, created_at, updated_at)
values ($1::uuid, $2::text, $3::text, $4::bigint, $5::text, $6::bigint, $7::text, $8::text, $9::text, 'pending', '', '', now(), now());
`

// Status transitions guard on pending: confirmed and failed are terminal.

const QSetOperationTxHash = `--sql 5b90d7e2-f1a6-4c38-bd54-08e7a293c614
update privileged_operations
set tx_hash = $2::text, updated_at = now()
where id = $1::uuid and status = 'pending';
`

const QConfirmOperation = `--sql c6f82a04-7d19-4be5-93c0-41a5d8e6b720
update privileged_operations
set status = 'confirmed', tx_hash = $2::text, updated_at = now()
where id = $1::uuid and status = 'pending';
`

const QFailOperation = `--sql 0ae74c58-b2d0-49f1-a8e6-3d51297f0cb8
update privileged_operations
set status = 'failed', detail = $2::text, updated_at = now()
where id = $1::uuid and status = 'pending';
`

const QListStalePendingOperations = `--sql 91d40b6e-5a27-4d83-bf09-c8e31f62a475
select id, actor_id, op_type, chain_id, tx_hash, created_at
from privileged_operations
where status = 'pending' and tx_hash <> '' and updated_at < now() - ($1::int * interval '1 second')
order by created_at asc
limit $2::int;
`
